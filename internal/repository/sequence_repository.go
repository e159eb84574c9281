package repository

import (
	"context"
	"fmt"
)

// 採番ドメイン。ドメインごとに独立した連番を持つ。
const (
	SeqOrder   = "order"
	SeqProduct = "product"
	SeqStatus  = "status"
	SeqMessage = "message"
)

var sequencePrefixes = map[string]string{
	SeqOrder:   "ord",
	SeqProduct: "prd",
	SeqStatus:  "stt",
	SeqMessage: "msg",
}

// ドメインの3文字プレフィックス
func SequencePrefix(domain string) (string, bool) {
	p, ok := sequencePrefixes[domain]
	return p, ok
}

// 5桁ゼロ埋め。99999を超えたら自然に桁が増える。
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}

// 採番。Nextは「ord00001」のような識別子を返す。
// 同一ドメインへの同時呼び出しでも重複しないこと。
type SequenceRepository interface {
	Next(ctx context.Context, domain string) (string, error)
}
