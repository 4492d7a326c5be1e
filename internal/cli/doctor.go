package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/hekate/internal/api"
	"github.com/julianstephens/hekate/internal/keyring"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false

	// Check 1: configuration
	if err := ctx.Config.Validate(); err != nil {
		ctx.printf("❌ Configuration: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Configuration: OK (%s)\n", ctx.Config.APIURL)
	}

	// Check 2: cache storage and schema
	if ctx.Store == nil {
		ctx.printf("⊘ Cache storage: SKIPPED (in-memory only)\n")
	} else if err := checkSchema(ctx); err != nil {
		ctx.printf("❌ Cache storage: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Cache storage: OK (%s)\n", ctx.Store.GetConfigPath())
	}

	// Check 3: keyring (warning only)
	if !keyringAvailable() {
		ctx.printf("⚠ Keyring: WARNING\n")
		ctx.printf("   OS keyring is not available; sessions cannot be stored\n")
	} else {
		ctx.printf("✓ Keyring: OK\n")
	}

	// Check 4: session and API (warnings only)
	loggedIn := false
	if st, err := ctx.Auth.Status(time.Now()); err != nil {
		ctx.printf("⚠ Session: WARNING\n")
		ctx.printf("   %v\n", err)
	} else if !st.LoggedIn {
		ctx.printf("⚠ Session: WARNING\n")
		ctx.printf("   not logged in - run 'hekate auth login'\n")
	} else if st.Expired {
		ctx.printf("⚠ Session: WARNING\n")
		ctx.printf("   session expired at %s - run 'hekate auth login'\n", st.ExpiresAt.Local().Format(time.RFC3339))
	} else {
		ctx.printf("✓ Session: OK\n")
		loggedIn = true
	}

	if loggedIn {
		if _, err := ctx.Auth.Profile(ctx.Ctx, true); err != nil {
			ctx.printf("❌ API reachable: FAIL\n")
			ctx.printf("   Error: %v\n", err)
			if api.IsNetworkError(err) {
				ctx.printf("   No response from %s - check the URL and your connection\n", ctx.Config.APIURL)
			}
			hasError = true
		} else {
			ctx.printf("✓ API reachable: OK\n")
		}
	} else {
		ctx.printf("⊘ API reachable: SKIPPED (no session)\n")
	}

	// Check 5: clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		ctx.printf("❌ Clock/timezone: FAIL\n")
		ctx.printf("   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Clock/timezone: OK\n")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

var keyringAvailable = keyring.IsAvailable

func checkSchema(ctx *Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("cache schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()

	// Routine "today" and the daily read are computed from the local date.
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	_, offset := now.Zone()
	if offset == 0 && now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC\n")
	}
	return nil
}
