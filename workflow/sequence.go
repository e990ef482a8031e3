package workflow

import (
	"fmt"
	"time"

	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/config"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/models"
	"github.com/KanhaiyaGupta0089/Full-Fledged-POS-BILLING-System/utils"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const sequenceInsertRetries = 5

// NextDocumentNumber allocates the next number for (kind, date) inside the
// caller's transaction. The counter row is locked FOR UPDATE, so two
// transactions can never be handed the same number; if the allocating
// transaction rolls back the increment rolls back with it and the number is
// reissued. The first allocation of a day races on the fresh row insert, which
// the unique index resolves; losers retake the winner's row.
func NextDocumentNumber(tx *gorm.DB, logger *logrus.Logger, kind models.DocumentKind, date time.Time) (string, error) {
	dateKey := utils.DateKey(date)
	prefix := documentPrefix(kind)

	for attempt := 0; attempt < sequenceInsertRetries; attempt++ {
		var seq models.DocumentNumberSequence
		err := tx.Clauses(clauseForUpdate()).
			Where("kind = ? AND date_key = ?", kind, dateKey).
			First(&seq).Error
		if err == nil {
			seq.LastValue++
			err = tx.Model(&seq).Update("last_value", seq.LastValue).Error
			if err != nil {
				return "", err
			}
			return formatDocumentNumber(prefix, dateKey, seq.LastValue), nil
		}
		if err != gorm.ErrRecordNotFound {
			return "", err
		}

		seq = models.DocumentNumberSequence{
			Kind:      kind,
			DateKey:   dateKey,
			Prefix:    prefix,
			LastValue: 1,
		}
		err = tx.Create(&seq).Error
		if err == nil {
			return formatDocumentNumber(prefix, dateKey, seq.LastValue), nil
		}
		if !utils.IsDuplicateKeyError(err) {
			return "", err
		}
		config.LogError(logger, "sequence.go", "NextDocumentNumber", "fresh row insert lost race, retrying", dateKey, err)
	}
	return "", utils.NewConflictError(
		fmt.Sprintf("could not allocate %s number for %s after %d attempts", kind, dateKey, sequenceInsertRetries), nil)
}

// documentPrefix resolves the number prefix for a kind, honoring a cached
// override so the prefix can be reconfigured without a deploy.
func documentPrefix(kind models.DocumentKind) string {
	var cached string
	found, err := config.GetRedisObject("docseq:prefix:"+string(kind), &cached)
	if err == nil && found && cached != "" {
		return cached
	}
	return kind.DefaultPrefix()
}

func formatDocumentNumber(prefix, dateKey string, value int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, dateKey, value)
}
