package model_test

import (
	"reflect"
	"strings"
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

// オープンカートの一意性はアプリのロックだけでなくDBの
// 部分ユニークインデックスでも保証する。タグが落ちると
// 同時addToCartでカートが二重に作れてしまう。
func TestOrderSchema_OpenCartUniqueIndex(t *testing.T) {
	f, ok := reflect.TypeOf(model.Order{}).FieldByName("CustomerEmail")
	assert.True(t, ok)

	tag := f.Tag.Get("gorm")
	assert.Contains(t, tag, "index:uniq_open_cart")

	// uniq_open_cartの定義部分だけ切り出して検査する
	var def string
	for _, part := range strings.Split(tag, ";") {
		if strings.HasPrefix(part, "index:uniq_open_cart") {
			def = part
		}
	}
	assert.Contains(t, def, "unique")
	assert.Contains(t, def, "where:committed_at IS NULL")
}
