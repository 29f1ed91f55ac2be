package main

import (
	"github.com/retroquest-labs/backend/internal/domain/cron"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(ct *cli.Context) error {
	s.loadConfig(ct)
	s.loadLogger()
	s.loadDatabase()
	s.migrateDB()
	s.loadRepos()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewExpireQuestCronJob(s.questRepo))
	cronJobManager.Start(s.ctx)

	return nil
}
