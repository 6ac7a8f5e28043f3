package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/strategic-ledger/internal/application/dto"
	"github.com/jhoicas/strategic-ledger/internal/domain"
	"github.com/jhoicas/strategic-ledger/internal/domain/access"
	"github.com/jhoicas/strategic-ledger/internal/domain/entity"
	rules "github.com/jhoicas/strategic-ledger/internal/domain/ledger"
	"github.com/jhoicas/strategic-ledger/internal/domain/repository"
	"github.com/jhoicas/strategic-ledger/pkg/logger"
)

// BalanceSeriesUseCase reconstruye la trayectoria de saldo y verifica el invariante
// CurrentBalance == InitialBalance + Σ delta. Solo lee.
type BalanceSeriesUseCase struct {
	snapshots SnapshotRunner
	log       *logger.Logger
	metrics   Metrics
}

// NewBalanceSeriesUseCase construye el caso de uso. metrics puede ser nil.
func NewBalanceSeriesUseCase(snapshots SnapshotRunner, log *logger.Logger, metrics Metrics) *BalanceSeriesUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BalanceSeriesUseCase{snapshots: snapshots, log: log, metrics: metrics}
}

// Reconstruct devuelve el punto "initial" seguido de un punto por movimiento en orden cronológico.
func (uc *BalanceSeriesUseCase) Reconstruct(ctx context.Context, p entity.Principal, resourceID string) (*dto.BalanceSeriesResponse, error) {
	resource, movements, err := uc.load(ctx, p, resourceID)
	if err != nil {
		return nil, err
	}

	points := rules.BuildSeries(resource.InitialBalance, movements)
	final := rules.FinalBalance(points)
	consistent := final.Equal(resource.CurrentBalance)
	if !consistent {
		uc.reportMismatch(resource, final, len(movements))
	}

	out := &dto.BalanceSeriesResponse{
		ResourceID:     resource.ID,
		Points:         make([]dto.SeriesPointResponse, 0, len(points)),
		FinalBalance:   final,
		CurrentBalance: resource.CurrentBalance,
		Consistent:     consistent,
	}
	for _, pt := range points {
		out.Points = append(out.Points, dto.SeriesPointResponse{
			Label:        pt.Label,
			Balance:      pt.Balance,
			MovementID:   pt.MovementID,
			MovementType: string(pt.Type),
			Delta:        pt.Delta,
			At:           pt.At,
		})
	}
	return out, nil
}

// Verify recalcula el saldo esperado desde el historial y lo compara con el almacenado.
func (uc *BalanceSeriesUseCase) Verify(ctx context.Context, p entity.Principal, resourceID string) (*dto.IntegrityReportResponse, error) {
	resource, movements, err := uc.load(ctx, p, resourceID)
	if err != nil {
		return nil, err
	}
	rules.SortChronological(movements)
	expected := rules.Replay(resource.InitialBalance, movements)
	consistent := expected.Equal(resource.CurrentBalance)
	if !consistent {
		uc.reportMismatch(resource, expected, len(movements))
	}
	return &dto.IntegrityReportResponse{
		ResourceID:      resource.ID,
		InitialBalance:  resource.InitialBalance,
		ExpectedBalance: expected,
		CurrentBalance:  resource.CurrentBalance,
		MovementCount:   len(movements),
		Consistent:      consistent,
	}, nil
}

// load lee recurso y movimientos en la misma instantánea.
func (uc *BalanceSeriesUseCase) load(ctx context.Context, p entity.Principal, resourceID string) (*entity.Resource, []*entity.Movement, error) {
	if !access.CanRead(p.Role) {
		return nil, nil, domain.ErrForbidden
	}
	if resourceID == "" {
		return nil, nil, domain.NewFieldError("resourceId", "resourceId es requerido")
	}

	var (
		resource  *entity.Resource
		movements []*entity.Movement
	)
	err := uc.snapshots.ReadSnapshot(ctx, func(
		resourceRepo repository.ResourceRepository,
		movRepo repository.MovementRepository,
	) error {
		r, err := resourceRepo.GetByID(ctx, resourceID)
		if err != nil {
			return err
		}
		if r == nil {
			return domain.ErrNotFound
		}
		movs, err := movRepo.ListChronological(ctx, resourceID)
		if err != nil {
			return err
		}
		resource, movements = r, movs
		return nil
	})
	if err != nil {
		return nil, nil, classify(ctx, err)
	}
	return resource, movements, nil
}

func (uc *BalanceSeriesUseCase) reportMismatch(r *entity.Resource, expected decimal.Decimal, count int) {
	uc.metrics.IntegrityViolation()
	uc.log.Warn().
		Str("resource_id", r.ID).
		Str("expected_balance", expected.String()).
		Str("current_balance", r.CurrentBalance.String()).
		Int("movements", count).
		Msg("saldo inconsistente con el historial de movimientos")
}
