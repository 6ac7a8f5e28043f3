package sqlite

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/jhoicas/strategic-ledger/internal/application/ledger"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
)

var (
	_ ledger.TxRunner       = (*TxRunner)(nil)
	_ ledger.SnapshotRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción SQLite. Sin SELECT FOR UPDATE, la
// exclusión mutua entre escritores la da writeMu: lectura del saldo, inserción y
// actualización ocurren sin otro escritor intercalado.
type TxRunner struct {
	db      *gorm.DB
	writeMu sync.Mutex
}

// NewTxRunner construye el runner.
func NewTxRunner(db *gorm.DB) *TxRunner {
	return &TxRunner{db: db}
}

// Run abre una transacción de escritura y hace Commit si fn no devuelve error.
func (r *TxRunner) Run(ctx context.Context, fn func(
	resourceRepo repository.ResourceBalanceRepository,
	movRepo repository.MovementAppender,
) error) error {
	if err := r.lock(ctx); err != nil {
		return err
	}
	defer r.writeMu.Unlock()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&resourceBalanceRepo{tx: tx}, NewMovementRepository(tx))
	})
	if err != nil {
		return translate("transaction", err)
	}
	return nil
}

// ReadSnapshot ejecuta fn dentro de una transacción de lectura.
func (r *TxRunner) ReadSnapshot(ctx context.Context, fn func(
	resourceRepo repository.ResourceRepository,
	movRepo repository.MovementRepository,
) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewResourceRepository(tx), NewMovementRepository(tx))
	})
	if err != nil {
		return translate("snapshot", err)
	}
	return nil
}

// lock espera el mutex de escritura respetando la cancelación del contexto.
func (r *TxRunner) lock(ctx context.Context) error {
	acquired := make(chan struct{})
	go func() {
		r.writeMu.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
		return nil
	case <-ctx.Done():
		go func() {
			<-acquired
			r.writeMu.Unlock()
		}()
		return translate("esperar bloqueo de escritura", ctx.Err())
	}
}
