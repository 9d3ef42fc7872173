package snapshot_test

import (
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/datum-redsoft/expense-reports/internal/core/datamodel/expense"
	"github.com/datum-redsoft/expense-reports/internal/snapshot"
)

var _ = Describe("Store", func() {
	var store *snapshot.Store

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		var err error
		store, err = snapshot.Open(":memory:", logger)
		Expect(err).ToNot(HaveOccurred())
	})

	groups := []expense.Group{
		{
			Month:  "Enero 2025",
			Total:  350.00,
			Count:  2,
			Status: expense.GroupStatusPending,
			Expenses: []expense.Expense{
				{ID: 1, VendorName: "Hotel Central", Category: "Hospedaje", TotalAmount: 300.00},
				{ID: 2, VendorName: "Taxi Express", Category: "Transporte", TotalAmount: 50.00},
			},
		},
	}

	It("round-trips a card's group list with its fetch time", func() {
		before := time.Now()
		Expect(store.Save(7, groups)).To(Succeed())

		loaded, fetchedAt, err := store.Load(7)

		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(Equal(groups))
		Expect(fetchedAt).To(BeTemporally(">=", before.Truncate(time.Second)))
	})

	It("reports ErrNoSnapshot for a card never fetched", func() {
		_, _, err := store.Load(99)

		Expect(err).To(MatchError(snapshot.ErrNoSnapshot))
	})

	It("replaces the previous snapshot on save", func() {
		Expect(store.Save(7, groups)).To(Succeed())

		updated := []expense.Group{{Month: "Enero 2025", Total: 350.00, Count: 2, Status: expense.GroupStatusApproved}}
		Expect(store.Save(7, updated)).To(Succeed())

		loaded, _, err := store.Load(7)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(HaveLen(1))
		Expect(loaded[0].Status).To(Equal(expense.GroupStatusApproved))
	})

	It("keeps snapshots of different cards apart", func() {
		Expect(store.Save(7, groups)).To(Succeed())
		Expect(store.Save(8, nil)).To(Succeed())

		loaded, _, err := store.Load(7)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(HaveLen(1))

		empty, _, err := store.Load(8)
		Expect(err).ToNot(HaveOccurred())
		Expect(empty).To(BeEmpty())
	})
})
