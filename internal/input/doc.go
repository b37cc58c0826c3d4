// Package input turns keyboard events into console operations.
//
// A display backend decodes host key presses into Events and pushes them
// into a Device, the console's keyboard data port. Pushing raises the
// keyboard interrupt line. The keyboard interrupt handler drains the
// device and hands each Event to a Dispatcher, which applies the console
// bindings:
//
//   - Up / Down scroll the active terminal by one line
//   - PgUp / PgDn scroll by one screen, End returns to the newest output
//   - Alt+digit or Ctrl+digit switch to that terminal
//   - Ctrl+L clears the active terminal's screen
//   - Ctrl+Q asks the host to quit
//   - printable keys and Enter are echoed to a normal terminal
//
// Typed characters are ignored while the log terminal is active.
package input
