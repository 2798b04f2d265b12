// package scheduler arms recurring playlist captures.
//
// A [Registry] holds one cron entry per scheduled task and re-reads the
// persisted task on every tick, so edits made after arming always take
// effect. [TaskService] is the owner-scoped lifecycle API that keeps the
// stored row and the armed entry in sync.
package scheduler
