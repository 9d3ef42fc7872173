package reqstate_test

import (
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/datum-redsoft/expense-reports/internal/reqstate"
)

var _ = Describe("Guard", func() {
	var guard *reqstate.Guard

	BeforeEach(func() {
		guard = reqstate.NewGuard()
	})

	It("starts unknown keys from idle", func() {
		Expect(guard.State("approve:1:Enero 2025")).To(Equal(reqstate.Idle))
	})

	It("admits the first start and refuses a duplicate", func() {
		Expect(guard.TryStart("k")).To(BeTrue())
		Expect(guard.TryStart("k")).To(BeFalse())
		Expect(guard.State("k")).To(Equal(reqstate.InFlight))
	})

	It("tracks keys independently", func() {
		Expect(guard.TryStart("a")).To(BeTrue())
		Expect(guard.TryStart("b")).To(BeTrue())
	})

	It("records success and allows a fresh start", func() {
		guard.TryStart("k")
		guard.Finish("k", nil)

		Expect(guard.State("k")).To(Equal(reqstate.Done))
		Expect(guard.TryStart("k")).To(BeTrue())
	})

	It("records failure and allows a user-triggered retry", func() {
		guard.TryStart("k")
		guard.Finish("k", errors.New("backend down"))

		Expect(guard.State("k")).To(Equal(reqstate.Failed))
		Expect(guard.TryStart("k")).To(BeTrue())
	})

	It("admits exactly one of many concurrent starts", func() {
		const attempts = 32
		var wg sync.WaitGroup
		admitted := make(chan bool, attempts)

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				admitted <- guard.TryStart("k")
			}()
		}
		wg.Wait()
		close(admitted)

		wins := 0
		for ok := range admitted {
			if ok {
				wins++
			}
		}
		Expect(wins).To(Equal(1))
	})
})

var _ = Describe("State", func() {
	It("renders a stable string form", func() {
		Expect(reqstate.Idle.String()).To(Equal("idle"))
		Expect(reqstate.InFlight.String()).To(Equal("in_flight"))
		Expect(reqstate.Done.String()).To(Equal("done"))
		Expect(reqstate.Failed.String()).To(Equal("failed"))
	})
})
