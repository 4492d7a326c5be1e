package constants

// User-facing messages. The app is Spanish-first, so these mirror the strings
// shown by the mobile client; server details only go to the log.
const (
	MsgGenericError         = "Ocurrió un error inesperado. Inténtalo de nuevo."
	MsgNetworkError         = "No se pudo conectar con el servidor."
	MsgSessionExpired       = "Tu sesión ha expirado. Inicia sesión de nuevo."
	MsgLoginFailed          = "Error al iniciar sesión. Verifica tus credenciales."
	MsgRegisterFailed       = "Error al crear la cuenta."
	MsgProfileFailed        = "Error al obtener el perfil."
	MsgProfileUpdateFailed  = "Error al actualizar el perfil."
	MsgForgotPasswordFailed = "Error al solicitar el código de recuperación."
	MsgVerifyCodeFailed     = "El código no es válido o ha expirado."
	MsgResetPasswordFailed  = "Error al restablecer la contraseña."

	MsgDreamsFetchFailed    = "Error al obtener los sueños."
	MsgDreamCreateFailed    = "Error al crear el sueño."
	MsgDreamUpdateFailed    = "Error al actualizar el sueño."
	MsgDreamVisualizeFailed = "No se pudo registrar la visualización."
	MsgDreamArchiveFailed   = "Error al archivar el sueño."
	MsgDreamDeleteFailed    = "Error al eliminar el sueño."
	MsgImageUploadFailed    = "Error al subir la imagen."
	MsgImageDeleteFailed    = "Error al eliminar la imagen."
	MsgImagesFetchFailed    = "Error al obtener las imágenes."

	MsgRoutineFetchFailed  = "Error al obtener la rutina."
	MsgBlockStatusFailed   = "No se pudo actualizar el estado del bloque."
	MsgBlockReorderFailed  = "No se pudo reordenar los bloques."
	MsgBlockCreateFailed   = "Error al crear el bloque."
	MsgBlockUpdateFailed   = "Error al actualizar el bloque."
	MsgBlockDeleteFailed   = "Error al eliminar el bloque."
	MsgDuplicateAllOK      = "Día duplicado correctamente en %d de %d días."
	MsgDuplicatePartial    = "Día duplicado parcialmente: %d de %d días."
	MsgDuplicateAllFailed  = "No se pudo duplicar el día (%d de %d días)."
	MsgDailyReadFailed     = "Error al obtener la lectura del día."
	MsgDreamVisualized     = "¡Sueño visualizado!"
	MsgBlockStatusAdvanced = "Bloque actualizado."

	// Validation messages
	MsgFieldRequired     = "Este campo es obligatorio"
	MsgInvalidEmail      = "Correo electrónico no válido"
	MsgPasswordTooShort  = "La contraseña debe tener al menos 8 caracteres"
	MsgPasswordsMismatch = "Las contraseñas no coinciden"
	MsgInvalidCode       = "El código debe tener 6 dígitos"
	MsgTitleTooLong      = "El título no puede superar los 100 caracteres"
	MsgTextTooLong       = "El texto no puede superar los 2000 caracteres"
	MsgNameTooLong       = "El nombre no puede superar los 50 caracteres"
	MsgInvalidColor      = "El color debe tener el formato #RRGGBB"
	MsgImageTooLarge     = "La imagen no puede superar los 10 MB"
	MsgImageType         = "Formato de imagen no permitido (JPEG, PNG, WEBP o HEIC)"
	MsgNotLoggedIn       = "No has iniciado sesión."
	MsgLoggedOut         = "Sesión cerrada."
	MsgBlockAlreadyDone  = "El bloque ya está completado."
	MsgAlreadyVisualized = "Ya visualizaste este sueño hoy."
	MsgResetCodeSent     = "Si la cuenta existe, enviamos un código a %s"
	MsgPasswordReset     = "Contraseña actualizada. Ya puedes iniciar sesión."
)
