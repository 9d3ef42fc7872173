package report_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/datum-redsoft/expense-reports/internal"
	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/notify"
	"github.com/datum-redsoft/expense-reports/internal/report"
	"github.com/datum-redsoft/expense-reports/internal/reqstate"
)

type mockBackendAPI struct {
	mu           sync.Mutex
	groups       []expense.Group
	listError    error
	approveError error
	listCalls    int
	approveCalls int

	// when set, ApproveExpenseGroup signals entered and blocks until release
	// is closed, so a second trigger can race the first deterministically
	entered chan struct{}
	release chan struct{}
}

func (m *mockBackendAPI) ListCardExpenses(ctx context.Context, cardID int64) ([]expense.Group, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()
	if m.listError != nil {
		return nil, m.listError
	}
	return m.groups, nil
}

func (m *mockBackendAPI) ApproveExpenseGroup(ctx context.Context, cardID int64, monthYear string) error {
	m.mu.Lock()
	m.approveCalls++
	m.mu.Unlock()
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	return m.approveError
}

func (m *mockBackendAPI) ApproveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.approveCalls
}

type mockSnapshotStore struct {
	saved     map[int64][]expense.Group
	fetchedAt time.Time
	saveError error
	loadError error
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{saved: make(map[int64][]expense.Group)}
}

func (m *mockSnapshotStore) Save(cardID int64, groups []expense.Group) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.saved[cardID] = groups
	return nil
}

func (m *mockSnapshotStore) Load(cardID int64) ([]expense.Group, time.Time, error) {
	if m.loadError != nil {
		return nil, time.Time{}, m.loadError
	}
	return m.saved[cardID], m.fetchedAt, nil
}

var _ = Describe("ReportService", func() {
	var (
		service *report.Service
		api     *mockBackendAPI
		snap    *mockSnapshotStore
		bus     *notify.Bus
		logger  *slog.Logger
	)

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		api = &mockBackendAPI{groups: makeGroups()}
		snap = newMockSnapshotStore()
		bus = notify.NewBus(time.Minute, logger)
		service = report.NewService(api, snap, bus, logger)
	})

	Describe("ListReports", func() {
		It("fetches, snapshots the unfiltered list and applies the filter", func() {
			groups, err := service.ListReports(context.Background(), 7, report.Filter{Status: "PENDIENTE"})

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(snap.saved[7]).To(HaveLen(3))
		})

		It("still lists when the snapshot save fails", func() {
			snap.saveError = errors.New("disk full")

			groups, err := service.ListReports(context.Background(), 7, report.Filter{})

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(3))
		})

		It("propagates a backend failure", func() {
			api.listError = internal.NewTransportError("Error 500", 500)

			_, err := service.ListReports(context.Background(), 7, report.Filter{})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("OfflineReports", func() {
		It("serves the last snapshot with its fetch time", func() {
			snap.saved[7] = makeGroups()
			snap.fetchedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

			groups, fetchedAt, err := service.OfflineReports(7, report.Filter{Status: "APROBADO"})

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(1))
			Expect(fetchedAt).To(Equal(snap.fetchedAt))
		})
	})

	Describe("GroupDetail", func() {
		It("returns the group matching the exact month label with aggregates", func() {
			group, aggregates, err := service.GroupDetail(context.Background(), 7, "Enero 2025")

			Expect(err).ToNot(HaveOccurred())
			Expect(group.Total).To(Equal(350.00))
			Expect(aggregates).To(HaveLen(3))
		})

		It("treats the month label as opaque, no partial match", func() {
			_, _, err := service.GroupDetail(context.Background(), 7, "Enero")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeReportNotFound))
		})
	})

	Describe("Approve", func() {
		It("approves, notifies and returns the re-fetched list", func() {
			groups, err := service.Approve(context.Background(), 7, "Enero 2025")

			Expect(err).ToNot(HaveOccurred())
			Expect(groups).To(HaveLen(3))
			Expect(api.ApproveCalls()).To(Equal(1))

			active := bus.Active()
			Expect(active).To(HaveLen(1))
			Expect(active[0].Type).To(Equal(notify.TypeSuccess))
			Expect(active[0].Message).To(Equal("Reporte de Enero 2025 aprobado exitosamente"))
		})

		It("publishes an error notification when the backend rejects", func() {
			api.approveError = internal.NewTransportError("Error 500", 500)

			_, err := service.Approve(context.Background(), 7, "Enero 2025")

			Expect(err).To(HaveOccurred())
			active := bus.Active()
			Expect(active).To(HaveLen(1))
			Expect(active[0].Type).To(Equal(notify.TypeError))
			Expect(active[0].Message).To(Equal("No se pudo aprobar el reporte de Enero 2025"))
		})

		It("rejects a duplicate trigger while the first is in flight", func() {
			api.entered = make(chan struct{}, 1)
			api.release = make(chan struct{})

			firstDone := make(chan error, 1)
			go func() {
				_, err := service.Approve(context.Background(), 7, "Enero 2025")
				firstDone <- err
			}()
			<-api.entered

			_, err := service.Approve(context.Background(), 7, "Enero 2025")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeApprovalInFlight))
			Expect(service.ApprovalState(7, "Enero 2025")).To(Equal(reqstate.InFlight))

			close(api.release)
			Expect(<-firstDone).ToNot(HaveOccurred())
			Expect(api.ApproveCalls()).To(Equal(1))
		})

		It("allows a retry after a failed approval", func() {
			api.approveError = internal.NewTransportError("Error 500", 500)
			_, err := service.Approve(context.Background(), 7, "Enero 2025")
			Expect(err).To(HaveOccurred())
			Expect(service.ApprovalState(7, "Enero 2025")).To(Equal(reqstate.Failed))

			api.approveError = nil
			_, err = service.Approve(context.Background(), 7, "Enero 2025")
			Expect(err).ToNot(HaveOccurred())
			Expect(api.ApproveCalls()).To(Equal(2))
		})

		It("does not block approvals of other groups", func() {
			api.entered = make(chan struct{}, 1)
			api.release = make(chan struct{})

			firstDone := make(chan error, 1)
			go func() {
				_, err := service.Approve(context.Background(), 7, "Enero 2025")
				firstDone <- err
			}()
			<-api.entered

			Expect(service.ApprovalState(7, "Marzo 2025")).To(Equal(reqstate.Idle))

			close(api.release)
			<-firstDone
		})
	})
})
