// Package errors provides the structured error type shared by the rules
// engine, the orchestrators, the stores and the CLI.
//
// Every error carries a Code, a user-facing Message, an optional Cause and
// free-form Meta. Input-time rejections of character edits use Rejected
// (the edit breaks a rule) or Invalid (the value is outside its domain);
// both record the edited field:
//
//	return c, errors.Rejected("abilities.str", "point-buy budget of %d exceeded", 27)
//
// Wrapping keeps the original code so store failures surface as
// CodeUnavailable all the way to the CLI:
//
//	if err := store.Update(ctx, in); err != nil {
//	    return errors.Wrap(err, "failed to save character")
//	}
//
// Configuration and constructor checks collect several problems with a
// ValidationBuilder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("store.sqlite.path", cfg.SQLite.Path, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// The CLI turns a Code into a process exit status with Code.ExitCode.
package errors
