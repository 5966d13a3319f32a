package query

import "github.com/caffeinepub/insurance-inquiry/internal/cache"

// Cache operations. A key is (operation, parameter); invalidation matches
// whole operations, so parameter variants go stale together.
const (
	OpCallerProfile   = "currentUserProfile"
	OpIsCallerAdmin   = "isCallerAdmin"
	OpPlans           = "insurancePlans"
	OpMyInquiries     = "myInquiries"
	OpAllInquiries    = "allInquiries"
	OpAgents          = "agents"
	OpContactMessages = "contactMessages"
)

func key(op string) cache.Key         { return cache.Key{Op: op} }
func keyArg(op, arg string) cache.Key { return cache.Key{Op: op, Arg: arg} }

// Mutation enumerates every write operation.
type Mutation int

const (
	MutationSaveProfile Mutation = iota
	MutationSubmitInquiry
	MutationUpdateInquiryStatus
	MutationSendMessage
	MutationAddAgent
	MutationAddPlan
	MutationAssignRole
)

// Invalidates is the declared invalidation table. The switch is exhaustive
// over Mutation values; extending the enum without extending the table
// panics on first use.
func (m Mutation) Invalidates() []string {
	switch m {
	case MutationSaveProfile:
		return []string{OpCallerProfile}
	case MutationSubmitInquiry:
		return []string{OpMyInquiries, OpAllInquiries}
	case MutationUpdateInquiryStatus:
		return []string{OpAllInquiries}
	case MutationSendMessage:
		return []string{OpContactMessages}
	case MutationAddAgent:
		return []string{OpAgents}
	case MutationAddPlan:
		return []string{OpPlans}
	case MutationAssignRole:
		return []string{OpIsCallerAdmin}
	}
	panic("query: mutation missing from invalidation table")
}
