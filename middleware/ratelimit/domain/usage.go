package domain

import (
	"context"
	"errors"
	"time"
)

// DefaultDailyLimit é a cota diária padrão por identidade.
const DefaultDailyLimit = 20

// PeriodLayout é o formato da chave de período: a janela vira na troca de data,
// não é uma janela móvel de 24h.
const PeriodLayout = "2006-01-02"

// ErrQuotaExceeded é o único erro que significa "negar".
// Qualquer outro erro vindo de um UsageStore é falha de infraestrutura.
var ErrQuotaExceeded = errors.New("daily quota exceeded")

// UsageRecord é o contador de uso de uma identidade no período corrente.
type UsageRecord struct {
	Identity    Key
	Count       int
	PeriodKey   string
	LastUpdated time.Time
}

// PeriodKey devolve a chave do período (data) de t no fuso loc.
// loc nil significa UTC.
func PeriodKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(PeriodLayout)
}

// Apply aplica a regra da cota diária sobre o registro atual e devolve o
// próximo estado a ser gravado.
//
//   - sem registro ou período diferente: count volta para 1 no período novo;
//   - mesmo período e count >= limit: ErrQuotaExceeded, nada deve ser gravado;
//   - caso contrário: count+1.
//
// Apply é puro. Quem chama é responsável por ler e gravar na mesma transação.
func Apply(prev UsageRecord, exists bool, identity Key, period string, limit int, now time.Time) (UsageRecord, error) {
	if !exists || prev.PeriodKey != period {
		return UsageRecord{Identity: identity, Count: 1, PeriodKey: period, LastUpdated: now}, nil
	}
	if prev.Count >= limit {
		return prev, ErrQuotaExceeded
	}
	return UsageRecord{Identity: identity, Count: prev.Count + 1, PeriodKey: period, LastUpdated: now}, nil
}

// UsageStore é a persistência compartilhada dos UsageRecord.
//
// Consume precisa executar leitura + Apply + escrita como uma única transação
// por identidade: duas chamadas concorrentes em count=limit-1 nunca podem ser
// ambas permitidas. Em caso de negação devolve ErrQuotaExceeded sem gravar.
type UsageStore interface {
	Consume(ctx context.Context, identity Key, period string, limit int, now time.Time) (UsageRecord, error)
	Get(ctx context.Context, identity Key) (UsageRecord, bool, error)
}
