// Package scheduler переводит наступившие письма в очередь доставки.
//
// Scheduler.Tick находит письма PENDING, у которых send_at уже прошёл,
// переводит их в QUEUED и публикует email.due. Runner вызывает Tick
// по cron-расписанию (по умолчанию раз в 5 секунд).
//
//	sched := scheduler.New(scheduler.Config{
//	    Emails:    emailRepo,
//	    Publisher: publisher,
//	    Logger:    logger,
//	})
//	runner, err := scheduler.NewRunner(spec, sched, logger)
//	err = runner.Run(ctx)
//
// Leader election делается в main.go через pg_try_advisory_lock.
// Без него условный UPDATE всё равно не даст двум репликам
// поставить одно письмо в очередь дважды.
package scheduler
