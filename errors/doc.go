/*
Package errors implements the error values shared by all tsm extensions.

Reuse the root errors declared in this package whenever possible and define
a custom root error only when it is specific to a single extension. Custom
root errors must be created with Register(code, description) during the
program start up so that no code is used twice.

Create errors at the point of failure with Wrap or Wrapf so that a stack
trace is attached to the innermost layer. Only the first wrap records the
stack trace.

Once you have an error, you can use fmt to get more context
	%s is just the error message
	%+v is the full stack trace
	%v appends a compressed [filename:line] where the error was created

Use the Is method of a root error to test an error kind:

	if errors.ErrNotFound.Is(err) {
		...
	}
*/
package errors
