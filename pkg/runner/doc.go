/*
Package runner drives a conversation over a pair of streams.

It is the bridge between the dialogue engine and the outside world: each
cycle renders the pending system utterances, reads one user utterance and
feeds it to Navigate, persisting the new state through a session.Manager
when one is configured.

# Key Components

  - Runner: the loop. It stops on the terminal state, on "exit"/"quit", on
    end of input and on interrupt signals.
  - IOHandler: decouples how utterances are exchanged.
  - TextHandler: a line-oriented handler for terminals and transcripts.
  - JSONHandler: JSON-Lines actions for programmatic hosts.

# Usage

	r := runner.NewRunner(
		runner.WithSessions(session.NewManager(store)),
		runner.WithSessionID("user-1"),
	)
	if _, err := r.Run(ctx, engine, nil); err != nil {
		log.Fatal(err)
	}
*/
package runner
