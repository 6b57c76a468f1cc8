/*
Package teevee is a small turn-based chatbot that interviews the user about a
movie they have seen.

The conversation is a graph of named states. Each turn the engine takes one
user utterance, tries the current state's guarded branches in order (the
error branch last), says the matched branch's reply and enters its target.
Guards and replies call named macros that read and write a per-session
variable store: the user's name, the resolved movie with its genres,
keywords and cast, and the user's cultural background.

# Architecture

The engine follows a hexagonal layout. The core in internal/runtime only
depends on the ports in pkg/ports:

  - GraphLoader serves the dialogue graph (by default the embedded movie
    interview, see internal/flow).
  - EntityTagger recognises PERSON and NORP spans (pkg/adapters/lexicon for
    a built-in gazetteer, pkg/adapters/nerhttp for an external NER service).
  - MovieCatalog answers title lookups (pkg/adapters/csv reads the dataset
    files, pkg/adapters/sqlite serves an imported copy).
  - StateStore persists sessions (memory, file or redis).

# Usage

	catalog, err := csv.Load("./data")
	if err != nil {
		log.Fatal(err)
	}
	macros := macro.NewLibrary(macro.Deps{
		Extractor: extract.New(lexicon.Default()),
		Resolver:  resolver.New(catalog),
	})

	eng, err := teevee.New(teevee.WithMacros(macros))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	state, err := eng.Start(ctx, "session-1")
	if err != nil {
		log.Fatal(err)
	}

	for {
		actions, done, err := eng.Render(ctx, state)
		if err != nil {
			log.Fatal(err)
		}
		for _, act := range actions {
			if act.Type == domain.ActionRenderContent {
				fmt.Println(act.Payload)
			}
		}
		if done {
			break
		}
		state, err = eng.Navigate(ctx, state, readLine())
		if err != nil {
			log.Fatal(err)
		}
	}

pkg/runner implements this loop over an io.Reader and io.Writer, with
session persistence and input sanitization.
*/
package teevee
