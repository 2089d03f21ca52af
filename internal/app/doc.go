// Package app wires the Amooora backend together: domain services for the
// community feed, the place/service/event catalog and profiles, backed by
// pluggable stores (in-memory, Postgres, or Supabase PostgREST) and managed
// through a shared lifecycle.
package app
