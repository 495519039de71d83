package payment

import (
	"testing"

	"stylora/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestVerifyConfirmation(t *testing.T) {
	secret := []byte("test-signing-secret")
	g := NewStripeGateway(string(secret), zap.NewNop())

	t.Run("accepts a properly signed confirmation", func(t *testing.T) {
		sig := SignConfirmation(secret, "order-1", "pay-1")
		assert.NoError(t, g.VerifyConfirmation("order-1", "pay-1", sig))
	})

	t.Run("rejects a tampered payment id", func(t *testing.T) {
		sig := SignConfirmation(secret, "order-1", "pay-1")
		err := g.VerifyConfirmation("order-1", "pay-2", sig)
		require.Error(t, err)
		assert.True(t, utils.HasCode(err, utils.CodePaymentVerification))
	})

	t.Run("rejects a signature from another secret", func(t *testing.T) {
		sig := SignConfirmation([]byte("other-secret"), "order-1", "pay-1")
		err := g.VerifyConfirmation("order-1", "pay-1", sig)
		require.Error(t, err)
		assert.True(t, utils.HasCode(err, utils.CodePaymentVerification))
	})

	t.Run("rejects an empty signature", func(t *testing.T) {
		err := g.VerifyConfirmation("order-1", "pay-1", "")
		require.Error(t, err)
	})
}

func TestSignConfirmationIsDeterministic(t *testing.T) {
	secret := []byte("s")
	assert.Equal(t, SignConfirmation(secret, "o", "p"), SignConfirmation(secret, "o", "p"))
	assert.NotEqual(t, SignConfirmation(secret, "o", "p"), SignConfirmation(secret, "o", "q"))
	// The separator keeps ("ab","c") and ("a","bc") from colliding.
	assert.NotEqual(t, SignConfirmation(secret, "ab", "c"), SignConfirmation(secret, "a", "bc"))
}
