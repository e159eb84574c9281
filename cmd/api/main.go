package main

import (
	"context"
	"errors"
	"os"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	"app/internal/infra/objectstore"
	infraRepo "app/internal/infra/repository"
	"app/internal/repository"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, email string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),
		"exp":   expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf(".env not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Order{},
		&model.Product{},
		&model.StatusEvent{},
		&model.NotificationMessage{},
		&model.Sequence{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//オブジェクトストア
	store, err := objectstore.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		panic(err)
	}
	if err := store.EnsureBucket(context.Background()); err != nil {
		panic(err)
	}

	//未読件数キャッシュ
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	//Repository（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	seqRepo := infraRepo.NewSequenceGormRepository(gormDB)
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	notifRepo := cache.NewCachedNotificationRepository(
		infraRepo.NewNotificationGormRepository(gormDB), rdb)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	notifUC := usecase.NewNotificationUsecase(notifRepo, seqRepo)
	cartUC := usecase.NewCartUsecase(tx)
	orderUC := usecase.NewOrderUsecase(tx, store)
	adminUC := usecase.NewAdminOrderUsecase(tx, auditRepo, notifUC)
	bundleUC := usecase.NewBundleUsecase(orderRepo, productRepo, store)
	uploadUC := usecase.NewUploadUsecase(orderRepo, productRepo, store)

	//Handler生成
	handlers := server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		Upload:       handler.NewUploadHandler(uploadUC, orderUC),
		Bundle:       handler.NewBundleHandler(bundleUC),
		Notification: handler.NewNotificationHandler(notifUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminUC),
	}

	//スタッフアカウントのシード（環境変数があるときだけ）
	seedStaffUser(userRepo, hasher, clock)

	//Server起動
	addr := ":8080"
	if v := cfg.Port; v != "" {
		if v[0] != ':' {
			addr = ":" + v
		} else {
			addr = v
		}
	}

	if err := server.Start(addr, cfg, handlers); err != nil {
		panic(err)
	}
}

// STAFF_EMAIL / STAFF_PASSWORD が設定されていればスタッフを1人作る。
// 既に居れば何もしない。
func seedStaffUser(userRepo repository.UserRepository, hasher auth.PasswordHasher, clock auth.Clock) {
	email := os.Getenv("STAFF_EMAIL")
	password := os.Getenv("STAFF_PASSWORD")
	if email == "" || password == "" {
		return
	}

	ctx := context.Background()
	if _, err := userRepo.FindByEmail(ctx, email); err == nil {
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Warnf("staff seed lookup failed: %v", err)
		return
	}

	hashed, err := hasher.Hash(password)
	if err != nil {
		log.Warnf("staff seed hash failed: %v", err)
		return
	}

	now := clock.Now()
	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         model.RoleStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Warnf("staff seed create failed: %v", err)
		return
	}
	log.Infof("staff user seeded: %s", email)
}
