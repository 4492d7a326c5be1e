package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/hekate/internal/cache"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/session"
	"github.com/julianstephens/hekate/internal/storage"
)

type DebugCmd struct {
	DBPath    *DebugDBPathCmd    `cmd:"" name:"db-path" help:"Show the cache database and log file locations."`
	DumpEntry *DebugDumpEntryCmd `cmd:"" name:"dump-entry" help:"Dump a cached query as JSON."`
	Token     *DebugTokenCmd     `cmd:"" help:"Dump the stored token's claims."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	path := ""
	if ctx.Store != nil {
		path = ctx.Store.GetConfigPath()
	}

	return writeJSON(ctx, map[string]string{"path": path, "log": logger.Path()})
}

type DebugDumpEntryCmd struct {
	Key string `arg:"" help:"Cache key, e.g. routine/all."`
}

func (cmd *DebugDumpEntryCmd) Run(ctx *Context) error {
	raw, ok := ctx.Cache.Get(cache.Key(cmd.Key))
	if !ok && ctx.Store != nil {
		// Entries past their TTL are gone from memory but may still be on disk.
		entry, err := ctx.Store.GetEntry(cmd.Key)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no cached entry for key: %s", cmd.Key)
		}
		if err != nil {
			return fmt.Errorf("failed to read entry: %w", err)
		}
		raw, ok = entry.Value, true
	}
	if !ok {
		return fmt.Errorf("no cached entry for key: %s", cmd.Key)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("cached entry is not JSON: %w", err)
	}
	return writeJSON(ctx, v)
}

type DebugTokenCmd struct{}

func (cmd *DebugTokenCmd) Run(ctx *Context) error {
	token, err := ctx.Tokens.Token()
	if err != nil {
		return err
	}
	info, err := session.Inspect(token)
	if err != nil {
		return err
	}
	out := map[string]any{"subject": info.Subject}
	if !info.ExpiresAt.IsZero() {
		out["expires_at"] = info.ExpiresAt
	}
	return writeJSON(ctx, out)
}

func writeJSON(ctx *Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}
