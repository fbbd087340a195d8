package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	batchmodels "agriqcert/internal/batch/models"
	batchservice "agriqcert/internal/batch/service"
	batchstore "agriqcert/internal/batch/store"
	credservice "agriqcert/internal/credential/service"
	"agriqcert/internal/credential/signing"
	credstore "agriqcert/internal/credential/store"
	"agriqcert/internal/qrcode"
	"agriqcert/internal/verification/models"
	"agriqcert/internal/verification/store"
	"agriqcert/pkg/domain"
	"agriqcert/pkg/platform/middleware/requesttime"
	platformsync "agriqcert/pkg/platform/sync"
)

// Invariant: what issuance stores is exactly what verification recomputes,
// so an issued credential verifies VALID until it is revoked.
func TestIssueThenVerify(t *testing.T) {
	// Sub-millisecond clock: issuance truncates, verification must agree.
	ctx := requesttime.WithTime(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mu := platformsync.NewShardedMutex()
	bs := batchstore.NewInMemoryStore()
	cs := credstore.NewInMemoryStore()
	strategy := signing.NewStrategy(signing.WithLogger(logger))

	batches := batchservice.New(bs, batchservice.NewShardedTx(mu, bs, nil), batchservice.WithLogger(logger))
	credentials := credservice.New(bs, cs, credservice.NewShardedTx(mu, bs, cs, nil), strategy, qrcode.New(),
		credservice.Config{PublicBaseURL: "https://agriqcert.test"}, credservice.WithLogger(logger))
	verifier := New(cs, strategy, store.NewInMemoryStore(), WithLogger(logger))

	exporter := domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleExporter}
	qa := domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleQA, Organization: "Ceylon Labs"}
	admin := domain.Actor{ID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}

	b, err := batches.CreateBatch(ctx, exporter, batchmodels.NewBatchInput{
		ProductType:        "Ceylon Tea",
		Quantity:           decimal.NewFromInt(1200),
		Unit:               "kg",
		OriginCountry:      "Sri Lanka",
		DestinationCountry: "Germany",
	})
	require.NoError(t, err)
	_, err = batches.RecordInspection(ctx, qa, b.ID, batchmodels.InspectionInput{
		MoisturePercent: 10,
		PesticidePPM:    0.02,
		Result:          batchmodels.ResultPass,
	})
	require.NoError(t, err)

	issued, err := credentials.IssueCredential(ctx, qa, b.ID, "")
	require.NoError(t, err)
	id := issued.Credential.ID.String()

	eval, err := verifier.VerifyByID(ctx, qa, id, "")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictValid, eval.Verdict)
	assert.Equal(t, models.Checks{Signature: true, Expiry: true, Revocation: true}, eval.Checks)
	require.NotNil(t, eval.Summary)
	assert.Equal(t, "Sri Lanka → Germany", *eval.Summary.Route)

	_, err = credentials.RevokeCredential(ctx, admin, b.ID, "fraud")
	require.NoError(t, err)

	eval, err = verifier.VerifyByID(ctx, qa, id, "")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictRevoked, eval.Verdict)
	assert.Equal(t, models.Checks{Signature: true, Expiry: true, Revocation: false}, eval.Checks)
}
