// Package usage tracks the free monthly allowance of each user.
//
// Every user owns exactly one Ledger. It is created lazily the first time the
// user asks for a unit of usage and is never deleted. The ledger counts how
// many free units were consumed in the current cycle and remembers when the
// counter was last reset.
//
// The reset rule is deliberately narrow: the counter goes back to zero only
// when a request arrives on the first day of a calendar month and the previous
// reset happened in an earlier month. A user who is inactive on the 1st keeps
// the old counter until a later request lands on another 1st.
//
// Store implementations must make IncrementFree a single conditional update:
// the increment is applied only while the counter is below the cap, so two
// concurrent requests cannot push the ledger over the free allowance.
package usage
