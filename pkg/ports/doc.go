/*
Package ports defines the driven ports (interfaces) of the teevee engine.

These interfaces decouple the dialogue core from its external collaborators, so
the engine works the same with a CSV file or a SQLite catalog, a gazetteer or a
remote NER service, and an in-memory or Redis session store.

# Key Interfaces

  - EntityTagger: returns typed spans (PERSON, NORP) for an utterance.
  - MovieCatalog: the read-only film dataset (metadata, keywords, cast).
  - Ontology: the knowledge base consulted by ontology guards.
  - GraphLoader: loads Node definitions (e.g., from embedded YAML or memory).
  - StateStore: persists and loads session State.
  - DistributedLocker: serialises access to a session across replicas.
*/
package ports
