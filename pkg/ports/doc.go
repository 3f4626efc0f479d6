/*
Package ports defines the driven ports (interfaces) of giveaibreak.

These interfaces decouple the flow from external implementations, allowing the
game to run against the remote scoring service or the local stub, and to persist
sessions in memory, on disk, in SQLite or in Redis.

# Key Interfaces

  - PromptService: The remote API (list prompts, fetch a prompt, submit a response).
  - StateStore: Persists session snapshots so a run can be resumed.
  - DistributedLocker: Distributed locking for concurrent session access.
  - Catalog and Scorer: The two halves of the stub scoring service.
*/
package ports
