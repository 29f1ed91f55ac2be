package main

import (
	"fmt"
	"net/http"

	"github.com/retroquest-labs/backend/internal/middleware"
	"github.com/retroquest-labs/backend/pkg/router"
	"github.com/retroquest-labs/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(ct *cli.Context) error {
	s.loadConfig(ct)
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.configs.ApiServer.Port),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on port %s", s.configs.ApiServer.Port)
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	xcontext.Logger(s.ctx).Infof("Api server stopped")
	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.db, s.configs, s.logger)
	s.router.AddCloser(middleware.Logger())

	// Public API.
	router.POST(s.router, "/login", s.authDomain.Login)
	router.GET(s.router, "/getQuest", s.questDomain.Get)
	router.GET(s.router, "/getListQuest", s.questDomain.GetList)
	router.GET(s.router, "/getQuestStats", s.questDomain.GetStats)
	router.GET(s.router, "/getUser", s.userDomain.GetUser)
	router.GET(s.router, "/getLeaderboard", s.userDomain.GetLeaderboard)
	router.GET(s.router, "/getListTag", s.tagDomain.GetList)
	router.GET(s.router, "/searchTag", s.tagDomain.Search)
	router.GET(s.router, "/suggestTag", s.tagDomain.Suggest)

	// These following APIs need authentication.
	authRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier(s.tokenEngine)
	authRouter.Before(authVerifier.Middleware())
	{
		// User API
		router.GET(authRouter, "/getMe", s.userDomain.GetMe)

		// Quest API
		router.POST(authRouter, "/createQuest", s.questDomain.Create)
		router.POST(authRouter, "/updateQuestStatus", s.questDomain.UpdateStatus)
		router.POST(authRouter, "/sweepExpiredQuests", s.questDomain.SweepExpired)

		// Claim API
		router.POST(authRouter, "/claim", s.claimDomain.Submit)
		router.GET(authRouter, "/getClaim", s.claimDomain.Get)
		router.GET(authRouter, "/getListClaim", s.claimDomain.GetList)
		router.GET(authRouter, "/getPendingClaims", s.claimDomain.GetPending)
		router.GET(authRouter, "/getUserClaimStats", s.claimDomain.GetUserStats)
		router.GET(authRouter, "/getQuestClaimStats", s.claimDomain.GetQuestStats)
		router.POST(authRouter, "/reviewClaim", s.claimDomain.Review)
		router.POST(authRouter, "/approveClaim", s.claimDomain.Approve)
		router.POST(authRouter, "/rejectClaim", s.claimDomain.Reject)
		router.POST(authRouter, "/autoApproveClaim", s.claimDomain.AutoApprove)
		router.POST(authRouter, "/verifyClaim", s.claimDomain.Verify)
	}
}
