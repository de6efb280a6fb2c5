// Package models defines the persisted domain records of the group ledger.
//
// # Records
//
//   - User: registered account that can sign in
//   - Group: a shared ledger
//   - Member: a participant of a group, optionally linked to a User
//   - Transaction: a shared expense paid by one member, with per-member Splits
//   - Settlement: a payment between two members, with a lifecycle status
//
// # Design Principles
//
//  1. Relationships use ID strings, never pointers
//  2. Money is float64 in the currency unit; amounts are kept to cents by the
//     services that create them
//  3. The netting engine (package ledger) has its own input types; services
//     convert these records into them
package models
