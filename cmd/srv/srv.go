package main

import (
	"context"
	"net/http"

	"github.com/retroquest-labs/backend/config"
	"github.com/retroquest-labs/backend/internal/domain"
	"github.com/retroquest-labs/backend/internal/domain/proofverify"
	"github.com/retroquest-labs/backend/internal/entity"
	"github.com/retroquest-labs/backend/internal/model"
	"github.com/retroquest-labs/backend/internal/repository"
	"github.com/retroquest-labs/backend/pkg/api/zkverify"
	"github.com/retroquest-labs/backend/pkg/authenticator"
	"github.com/retroquest-labs/backend/pkg/blueprint"
	"github.com/retroquest-labs/backend/pkg/logger"
	"github.com/retroquest-labs/backend/pkg/router"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context

	configs config.Configs
	logger  logger.Logger
	db      *gorm.DB

	userRepo  repository.UserRepository
	questRepo repository.QuestRepository
	claimRepo repository.ClaimRepository
	tagRepo   repository.TagRepository

	tokenEngine authenticator.TokenEngine[model.AccessToken]

	authDomain  domain.AuthDomain
	userDomain  domain.UserDomain
	questDomain domain.QuestDomain
	claimDomain domain.ClaimDomain
	tagDomain   domain.TagDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig(ct *cli.Context) {
	configs, err := config.Load(ct.String("config"))
	if err != nil {
		panic(err)
	}

	s.configs = configs
	s.ctx = xcontext.WithConfigs(context.Background(), configs)
}

func (s *srv) loadLogger() {
	s.logger = logger.NewLogger(s.configs.LogLevel)
	s.ctx = xcontext.WithLogger(s.ctx, s.logger)
}

func (s *srv) loadDatabase() {
	var err error
	s.db, err = gorm.Open(mysql.New(mysql.Config{
		DSN:                       s.configs.Database.ConnectionString(),
		DefaultStringSize:         256,
		DisableDatetimePrecision:  true,
		DontSupportRenameIndex:    true,
		DontSupportRenameColumn:   true,
		SkipInitializeWithVersion: false,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, s.db)
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.questRepo = repository.NewQuestRepository()
	s.claimRepo = repository.NewClaimRepository()
	s.tagRepo = repository.NewTagRepository()
}

func (s *srv) loadDomains() {
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](s.configs.Auth)

	verifier := proofverify.NewZkEmailVerifier(
		blueprint.NewRegistryResolver(s.configs.ZkVerify),
		zkverify.New(s.configs.ZkVerify),
		proofverify.NewInMemoryKeyStore(),
	)

	escrow := domain.NewEscrowCoordinator()

	s.authDomain = domain.NewAuthDomain(s.userRepo, s.tokenEngine)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.questRepo, s.claimRepo)
	s.questDomain = domain.NewQuestDomain(s.questRepo, s.userRepo, s.tagRepo)
	s.claimDomain = domain.NewClaimDomain(s.claimRepo, s.questRepo, s.userRepo, escrow, verifier)
	s.tagDomain = domain.NewTagDomain(s.tagRepo)
}
