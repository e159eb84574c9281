package repository

import (
	"context"
	"errors"
	"fmt"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceGormRepository struct {
	db *gorm.DB
}

// DI
func NewSequenceGormRepository(db *gorm.DB) *SequenceGormRepository {
	return &SequenceGormRepository{db: db}
}

// Next はドメインのカウンタ行をロックして+1し、
// 「ord00001」形式の識別子を返す。
// 行が無ければ1から作る。同時に作ろうとして負けた側は読み直す。
func (r *SequenceGormRepository) Next(ctx context.Context, domain string) (string, error) {
	prefix, ok := repo.SequencePrefix(domain)
	if !ok {
		return "", fmt.Errorf("unknown sequence domain: %s", domain)
	}

	var next int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq model.Sequence

		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("domain = ?", domain).
			First(&seq).Error

		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			//初回は1から。SAVEPOINTで括り、主キー衝突で
			//セッションが中断状態にならないようにする
			seq = model.Sequence{Domain: domain, Value: 1}
			createErr := tx.Transaction(func(tx2 *gorm.DB) error {
				return tx2.Create(&seq).Error
			})
			if createErr != nil {
				//同時作成に負けたらロックを取り直してインクリメント
				if rerr := tx.
					Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("domain = ?", domain).
					First(&seq).Error; rerr != nil {
					return createErr
				}
				return increment(tx, &seq, &next)
			}
			next = seq.Value
			return nil
		}
		if findErr != nil {
			return findErr
		}

		return increment(tx, &seq, &next)
	})

	if err != nil {
		return "", err
	}
	return repo.FormatID(prefix, next), nil
}

func increment(tx *gorm.DB, seq *model.Sequence, next *int64) error {
	newValue := seq.Value + 1

	res := tx.Model(&model.Sequence{}).
		Where("domain = ?", seq.Domain).
		Update("value", newValue)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}

	*next = newValue
	return nil
}
