// Package models defines the core domain models for the life areas backend.
//
// # Models
//
//   - LifeArea: an orderable category. Defaults are visible to every user,
//     the rest are private to their owner.
//   - OrderEntry: one user's position for one life area.
//   - OrderedLifeArea: a life area joined with the requesting user's position.
//   - User: a registered account.
//
// # Design Principles
//
// 1. **IDs, not pointers**: relationships are expressed with ID fields
// 2. **Per-user ordering**: a life area has no global position, only per-user OrderEntry rows
// 3. **Visibility lives on the model**: callers ask LifeArea.VisibleTo instead of repeating the rule
package models
