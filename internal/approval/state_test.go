package approval_test

import (
	"errors"

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/apiclient"
	"github.com/frahmantamala/expense-portal/internal/approval"
	"github.com/frahmantamala/expense-portal/internal/auth"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-portal/internal/core/notify"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Transition", func() {
	var ready approval.ViewState

	BeforeEach(func() {
		ready, _ = approval.Transition(approval.ViewState{}, approval.Loaded{
			Expense:   pendingExpense(),
			Submitter: &user.User{ID: "u1", Name: "Ana Employee"},
		})
	})

	It("starts loading with nothing to show", func() {
		s, notes := approval.Transition(ready, approval.LoadStarted{})
		Expect(s.Phase).To(Equal(approval.PhaseLoading))
		Expect(s.Expense).To(BeNil())
		Expect(s.Submitter).To(BeNil())
		Expect(notes).To(BeEmpty())
	})

	It("becomes ready once both records arrive", func() {
		Expect(ready.Ready()).To(BeTrue())
		Expect(ready.ActionsDisabled()).To(BeFalse())
	})

	It("treats a missing submitter as a failed load", func() {
		s, notes := approval.Transition(approval.ViewState{}, approval.Loaded{Expense: pendingExpense()})
		Expect(s.Phase).To(Equal(approval.PhaseNotFound))
		Expect(s.Expense).To(BeNil())
		Expect(errors.Is(s.Err, internal.ErrUserNotFound)).To(BeTrue())
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Level).To(Equal(notify.LevelError))
		Expect(notes[0].Message).To(Equal(approval.MsgLoadFailed))
	})

	It("reports a load failure once", func() {
		s, notes := approval.Transition(approval.ViewState{Phase: approval.PhaseLoading}, approval.LoadFailed{Err: errors.New("boom")})
		Expect(s.Phase).To(Equal(approval.PhaseNotFound))
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Level).To(Equal(notify.LevelError))
		Expect(notes[0].Message).To(Equal("Failed to load expense details."))
	})

	It("disables both actions while a decision is in flight", func() {
		s, notes := approval.Transition(ready, approval.ActionStarted{Decision: expense.DecisionApprove})
		Expect(s.Pending).To(Equal(expense.DecisionApprove))
		Expect(s.ActionsDisabled()).To(BeTrue())
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Level).To(Equal(notify.LevelLoading))
		Expect(notes[0].Message).To(Equal("Processing approve..."))
	})

	It("ignores a second start while one is pending", func() {
		busy, _ := approval.Transition(ready, approval.ActionStarted{Decision: expense.DecisionApprove})
		s, notes := approval.Transition(busy, approval.ActionStarted{Decision: expense.DecisionReject})
		Expect(s.Pending).To(Equal(expense.DecisionApprove))
		Expect(notes).To(BeEmpty())
	})

	It("replaces the expense with the server copy on success", func() {
		busy, _ := approval.Transition(ready, approval.ActionStarted{Decision: expense.DecisionReject})
		updated := pendingExpense()
		updated.Status = expense.StatusRejected

		s, notes := approval.Transition(busy, approval.ActionSucceeded{Decision: expense.DecisionReject, Expense: updated})

		Expect(s.Pending).To(BeEmpty())
		Expect(s.Expense.Status).To(Equal(expense.StatusRejected))
		Expect(s.Submitter.Name).To(Equal("Ana Employee"))
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Message).To(Equal("Expense rejected successfully!"))

		viewer := &auth.Viewer{ID: "m1", Role: user.RoleManager}
		Expect(ready.CanTakeAction(viewer)).To(BeTrue())
		Expect(s.CanTakeAction(viewer)).To(BeFalse())
	})

	It("keeps the expense and appends the server message on failure", func() {
		busy, _ := approval.Transition(ready, approval.ActionStarted{Decision: expense.DecisionApprove})
		err := &apiclient.Error{StatusCode: 409, Message: "Expense already processed"}

		s, notes := approval.Transition(busy, approval.ActionFailed{Decision: expense.DecisionApprove, Err: err})

		Expect(s.Pending).To(BeEmpty())
		Expect(s.Expense.Status).To(Equal(expense.StatusPending))
		Expect(notes).To(HaveLen(1))
		Expect(notes[0].Message).To(Equal("Failed to approve expense. Expense already processed"))
	})

	It("uses the bare failure message for transport errors", func() {
		busy, _ := approval.Transition(ready, approval.ActionStarted{Decision: expense.DecisionReject})
		_, notes := approval.Transition(busy, approval.ActionFailed{Decision: expense.DecisionReject, Err: errors.New("dial tcp: refused")})
		Expect(notes[0].Message).To(Equal("Failed to reject expense."))
	})
})
