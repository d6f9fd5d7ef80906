package integration

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Gateways redeliver aggressively; two deliveries of the same charge can land
// on different replicas in the same millisecond. However many race in, the
// storefront must end up with exactly one order, one voucher, one customer.
func TestConcurrentDeliveriesOfSameCharge(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const deliveries = 20

	body := paymentCompletedBody("evt_race", "pi_race")

	var wg sync.WaitGroup
	statuses := make([]int, deliveries)
	start := make(chan struct{})

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			resp := app.deliver(t, body)
			statuses[i] = resp.StatusCode
			resp.Body.Close()
		}(i)
	}
	close(start)
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, http.StatusOK, status, "delivery %d", i)
	}

	assert.Equal(t, 1, app.customerRepo.count())
	assert.Equal(t, 1, app.orderRepo.count())
	assert.Equal(t, 1, app.voucherRepo.count())

	order, err := app.orderRepo.GetByPaymentReference(t.Context(), "pi_race")
	require.NoError(t, err)
	require.NotNil(t, order)

	voucher, err := app.voucherRepo.GetByOrderID(t.Context(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, voucher)
}

// Distinct charges racing in parallel each get their own order and voucher,
// sharing the one customer record for the repeat buyer.
func TestConcurrentDeliveriesOfDistinctCharges(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	references := []string{"pi_1", "pi_2", "pi_3", "pi_4", "pi_5"}

	var wg sync.WaitGroup
	for _, ref := range references {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			resp := app.deliver(t, paymentCompletedBody("evt_"+ref, ref))
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			resp.Body.Close()
		}(ref)
	}
	wg.Wait()

	assert.Equal(t, 1, app.customerRepo.count())
	assert.Equal(t, len(references), app.orderRepo.count())
	assert.Equal(t, len(references), app.voucherRepo.count())
}
