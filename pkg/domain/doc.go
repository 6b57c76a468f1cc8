/*
Package domain contains the core domain models of the teevee dialogue engine.

It defines the entities of the conversation state machine and keeps them free of
I/O and persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Node: a conversational state with an optional prompt and ordered Branches.
  - Branch: a guard/reply/target triple evaluated against the user utterance.
  - State: the runtime snapshot of one session (current node, variables, outbox).
  - Variables: the typed per-session variable store read and written by macros.
  - Outcome: the tagged result a macro hands back to the state machine.
  - ActionRequest: what the host should render or collect.
*/
package domain
