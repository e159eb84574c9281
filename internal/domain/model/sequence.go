package model

// 採番カウンタ。ドメインごとに1行。
// max+1方式ではなく行ロック付きのインクリメントで使う。
type Sequence struct {
	Domain string `gorm:"type:varchar(20);primaryKey"`
	Value  int64  `gorm:"not null"`
}
