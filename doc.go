// Package account implements a web application's user account subsystem:
// registration, the post authentication login hook, social identity
// resolution, profile updates, password changes, email confirmation,
// account deletion and the admin impersonation state machine.
//
// Persistence is handled by bun backed repositories; the session,
// notification and configuration collaborators are small interfaces so
// the surrounding application decides how they are backed. All
// operations take the acting user explicitly.
package account
