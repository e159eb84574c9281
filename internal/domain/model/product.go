package model

import "time"

// 印刷ジョブ1件。必ず注文の下にぶら下がる。
// FolderPathはアップロード済みファイルの置き場所（products/<id>/）。
type Product struct {
	ID          string    `gorm:"type:varchar(20);primaryKey" json:"id"`
	OrderID     string    `gorm:"type:varchar(20);not null;index" json:"order_id"`
	AlbumName   string    `gorm:"type:varchar(255);not null" json:"album_name"`
	Size        string    `gorm:"type:varchar(50);not null" json:"size"`
	PaperType   string    `gorm:"type:varchar(50);not null" json:"paper_type"`
	PrintFormat string    `gorm:"type:varchar(50);not null" json:"print_format"`
	Quantity    int64     `gorm:"not null" json:"quantity"`
	UnitPrice   int64     `gorm:"not null" json:"unit_price"`
	FolderPath  string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"folder_path"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 明細の小計
func (p Product) LineTotal() int64 {
	return p.UnitPrice * p.Quantity
}
