package estimates

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/Reparaciones-api/internal/application/events"
	"github.com/jhoicas/Reparaciones-api/internal/domain"
	"github.com/jhoicas/Reparaciones-api/internal/domain/entity"
	"github.com/jhoicas/Reparaciones-api/internal/domain/estimate"
	"github.com/jhoicas/Reparaciones-api/internal/domain/repository"
)

// lockForDecision bloquea la cotización y verifica que su orden siga abierta.
func lockForDecision(ctx context.Context, store repository.Store, estimateID string) (*entity.Estimate, error) {
	est, err := store.Estimates().GetForUpdate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, domain.ErrNotFound
	}
	o, err := store.Orders().GetByID(ctx, est.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrNotFound
	}
	if o.Status.IsTerminal() {
		return nil, domain.Invalid("order", "la orden está cerrada")
	}
	return est, nil
}

func decide(ctx context.Context, store repository.Store, est *entity.Estimate, item *entity.EstimateItem, d entity.Decision, now time.Time, rec *events.Recorder) error {
	at := now
	item.Status = d
	item.DecidedAt = &at
	if err := store.Estimates().UpdateItemDecision(ctx, item); err != nil {
		return err
	}
	rec.Record(events.EstimateItemDecided{
		EstimateID: est.ID,
		OrderID:    est.OrderID,
		ItemID:     item.ID,
		Decision:   d,
		At:         now,
	})
	return nil
}

func parseFinal(field string, d entity.Decision) (entity.Decision, error) {
	d = entity.Decision(strings.ToUpper(strings.TrimSpace(string(d))))
	if !d.Valid() || !d.IsFinal() {
		return "", domain.Invalid(field, "decisión inválida, use ACC o REJ")
	}
	return d, nil
}

// RecordDecision fija la decisión de una partida. Una decisión es final: si la
// partida ya estaba decidida se devuelve DecisionFinalError sin tocar nada.
func (uc *UseCase) RecordDecision(ctx context.Context, estimateID, itemID string, decision entity.Decision) (*entity.Estimate, error) {
	d, err := parseFinal("decision", decision)
	if err != nil {
		return nil, err
	}
	var out *entity.Estimate
	rec := events.NewRecorder()
	err = uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		est, err := lockForDecision(ctx, store, estimateID)
		if err != nil {
			return err
		}
		item := est.Item(itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		if item.IsDecided() {
			return &domain.DecisionFinalError{ItemID: item.ID}
		}
		now := uc.now()
		if err := decide(ctx, store, est, item, d, now, rec); err != nil {
			return err
		}
		est.UpdatedAt = now
		estimate.Recompute(est, uc.taxRate)
		if err := store.Estimates().Update(ctx, est); err != nil {
			return err
		}
		out = est
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return out, nil
}

// FinalizePendingDecisions aplica en lote las decisiones de las partidas pendientes.
// Las partidas ya decididas se ignoran aunque vengan en el mapa. Si tras aplicar
// el lote queda alguna pendiente, no se confirma nada.
func (uc *UseCase) FinalizePendingDecisions(ctx context.Context, estimateID string, decisions map[string]entity.Decision) (*entity.Estimate, error) {
	parsed := make(map[string]entity.Decision, len(decisions))
	for id, d := range decisions {
		v, err := parseFinal("decisions."+id, d)
		if err != nil {
			return nil, err
		}
		parsed[id] = v
	}

	var out *entity.Estimate
	rec := events.NewRecorder()
	err := uc.txRunner.RunWorkshop(ctx, func(store repository.Store) error {
		est, err := lockForDecision(ctx, store, estimateID)
		if err != nil {
			return err
		}
		for id := range parsed {
			if est.Item(id) == nil {
				return domain.Invalid("decisions."+id, "la partida no pertenece a la cotización")
			}
		}

		now := uc.now()
		var missing []string
		for i := range est.Items {
			item := &est.Items[i]
			if item.IsDecided() {
				continue
			}
			d, ok := parsed[item.ID]
			if !ok {
				missing = append(missing, item.Description)
				continue
			}
			if err := decide(ctx, store, est, item, d, now, rec); err != nil {
				return err
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return domain.Invalid("decisions", "faltan decisiones para: "+strings.Join(missing, ", "))
		}

		est.UpdatedAt = now
		estimate.Recompute(est, uc.taxRate)
		if err := store.Estimates().Update(ctx, est); err != nil {
			return err
		}
		out = est
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.dispatcher.Dispatch(ctx, rec)
	return out, nil
}
