package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tixeats/walletsettle/internal/domain"
	"github.com/tixeats/walletsettle/internal/usecase"
	"github.com/tixeats/walletsettle/internal/usecase/mocks"
)

func newWalletUseCase(f *engineFixture) *usecase.WalletUseCase {
	return usecase.NewWalletUseCase(
		f.txMgr,
		f.wallets,
		f.records,
		f.outbox,
		mocks.NewIDGenerator(),
		f.metrics,
		zerolog.Nop(),
	)
}

func TestWalletUseCase_CreateWallet(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateWalletInput
		wantErr error
	}{
		{
			name:  "customer wallet",
			input: usecase.CreateWalletInput{OwnerKind: domain.OwnerCustomer, OwnerID: "u2"},
		},
		{
			name:  "business wallet with opening balance",
			input: usecase.CreateWalletInput{OwnerKind: domain.OwnerBusiness, OwnerID: "b2", OpeningBalance: 2500},
		},
		{
			name:    "duplicate owner",
			input:   usecase.CreateWalletInput{OwnerKind: domain.OwnerCustomer, OwnerID: "u1"},
			wantErr: domain.ErrWalletExists,
		},
		{
			name:    "unknown owner kind",
			input:   usecase.CreateWalletInput{OwnerKind: "merchant", OwnerID: "m1"},
			wantErr: domain.ErrInvalidOwnerKind,
		},
		{
			name:    "missing owner id",
			input:   usecase.CreateWalletInput{OwnerKind: domain.OwnerCustomer},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "negative opening balance",
			input:   usecase.CreateWalletInput{OwnerKind: domain.OwnerCustomer, OwnerID: "u3", OpeningBalance: -1},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t)
			f.addWallet(domain.OwnerCustomer, "u1", 0)
			uc := newWalletUseCase(f)

			wallet, err := uc.CreateWallet(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.ledger.Outbox())
				return
			}

			require.NoError(t, err)
			assert.True(t, wallet.Active)
			assert.Equal(t, tt.input.OpeningBalance, wallet.Balance)
			assert.Equal(t, tt.input.OpeningBalance, wallet.OpeningBalance)

			stored, ok := f.ledger.Wallet(wallet.Ref())
			require.True(t, ok)
			assert.Equal(t, wallet.ID, stored.ID)

			outbox := f.ledger.Outbox()
			require.Len(t, outbox, 1)
			assert.Equal(t, domain.EventTypeWalletCreated, outbox[0].EventType)
			assert.Equal(t, wallet.ID, outbox[0].AggregateID)

			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.WalletsCreated.WithLabelValues(string(tt.input.OwnerKind))))
		})
	}
}

func TestWalletUseCase_DeactivateBlocksTransfers(t *testing.T) {
	f := newEngineFixture(t)
	ref := f.addWallet(domain.OwnerCustomer, "u1", 0)
	uc := newWalletUseCase(f)
	ctx := context.Background()

	wallet, err := uc.DeactivateWallet(ctx, "w-customer-u1")
	require.NoError(t, err)
	assert.False(t, wallet.Active)

	_, err = f.engine.Apply(ctx, domain.NewGatewayCharge(domain.EventChargeSuccess, "ref-1", "u1", 100))
	require.ErrorIs(t, err, domain.ErrWalletInactive)

	wallet, err = uc.ReactivateWallet(ctx, "w-customer-u1")
	require.NoError(t, err)
	assert.True(t, wallet.Active)

	_, err = f.engine.Apply(ctx, domain.NewGatewayCharge(domain.EventChargeSuccess, "ref-1", "u1", 100))
	require.NoError(t, err)
	assert.Equal(t, domain.Money(100), f.balance(t, ref))
}

func TestWalletUseCase_ListRecordsAndGetTransaction(t *testing.T) {
	f := newEngineFixture(t)
	f.addWallet(domain.OwnerCustomer, "u1", 0)
	uc := newWalletUseCase(f)
	ctx := context.Background()

	for _, ref := range []string{"ref-1", "ref-2", "ref-3"} {
		_, err := f.engine.Apply(ctx, domain.NewGatewayCharge(domain.EventChargeSuccess, ref, "u1", 100))
		require.NoError(t, err)
	}

	records, err := uc.ListRecords(ctx, "w-customer-u1", 2, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ref-3", records[0].CorrelationID)
	assert.Equal(t, domain.Money(300), records[0].BalanceAfter)

	_, err = uc.ListRecords(ctx, "w-missing", 10, 0)
	require.ErrorIs(t, err, domain.ErrWalletNotFound)

	tx, err := uc.GetTransaction(ctx, domain.EventChargeSuccess, "ref-2")
	require.NoError(t, err)
	require.Len(t, tx, 1)
	assert.Equal(t, domain.Money(200), tx[0].BalanceAfter)

	_, err = uc.GetTransaction(ctx, domain.EventChargeSuccess, "ref-404")
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestWalletUseCase_ListWallets(t *testing.T) {
	f := newEngineFixture(t)
	f.addWallet(domain.OwnerCustomer, "u1", 0)
	f.addWallet(domain.OwnerBusiness, "b1", 0)
	f.addWallet(domain.OwnerPlatform, "tixeats", 0)
	uc := newWalletUseCase(f)

	wallets, err := uc.ListWallets(context.Background(), usecase.ListWalletsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, wallets, 2)

	wallets, err = uc.ListWallets(context.Background(), usecase.ListWalletsInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, wallets, 1)
}

func TestWalletUseCase_GetWalletByOwner(t *testing.T) {
	ctrl := gomock.NewController(t)
	walletRepo := mocks.NewMockWalletRepository(ctrl)

	ref := domain.WalletRef{OwnerKind: domain.OwnerBusiness, OwnerID: "b1"}
	walletRepo.EXPECT().
		GetByOwner(gomock.Any(), ref).
		Return(&domain.Wallet{ID: "w1", OwnerKind: ref.OwnerKind, OwnerID: ref.OwnerID, Balance: 700, Active: true}, nil)

	uc := usecase.NewWalletUseCase(nil, walletRepo, nil, nil, nil, nil, zerolog.Nop())

	wallet, err := uc.GetWalletByOwner(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "w1", wallet.ID)
	assert.Equal(t, domain.Money(700), wallet.Balance)

	_, err = uc.GetWalletByOwner(context.Background(), domain.WalletRef{OwnerKind: "nobody", OwnerID: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidOwnerKind)
}

func TestWalletUseCase_CreateWallet_BeginFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	txManager := mocks.NewMockTransactionManager(ctrl)
	walletRepo := mocks.NewMockWalletRepository(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("pool exhausted"))

	uc := usecase.NewWalletUseCase(txManager, walletRepo, nil, nil, mocks.NewIDGenerator(), nil, zerolog.Nop())

	_, err := uc.CreateWallet(context.Background(), usecase.CreateWalletInput{OwnerKind: domain.OwnerCustomer, OwnerID: "u1"})
	require.Error(t, err)
}
