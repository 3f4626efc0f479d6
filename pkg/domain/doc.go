/*
Package domain contains the core domain models of the giveaibreak experience.

It defines the prompts the tired assistant hands over, the records produced when the
user answers them, and the session state that ties a run together. The package is
kept pure and free of I/O so that the flow, the stores and the adapters can share it.

# Key Entities

  - Prompt: A request the assistant received, framed by one Variation (sender, avatar, message).
  - ResponseRecord: One scored answer, appended to the session history.
  - SessionState: Ordered prompt slugs, the current position and the response history.
  - Snapshot: The persisted form of a session (state plus the route the user was on).
*/
package domain
