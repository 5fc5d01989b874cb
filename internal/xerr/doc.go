// Package xerr defines the error kinds shared by every stage of the
// preprocessor. All of them are fatal for the run; callers match them with
// errors.Is and layer context on top with fmt.Errorf("...: %w").
package xerr
