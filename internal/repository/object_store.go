package repository

import (
	"context"
	"io"
)

// オブジェクトストア上の1ファイル
type ObjectInfo struct {
	Key  string
	Size int64
}

// アップロード済みファイルの置き場所。キーで引く。
type ObjectStore interface {
	//prefix配下のオブジェクトをキー昇順で列挙する
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	//ストリームで取得。呼び出し側がCloseする。
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
}
