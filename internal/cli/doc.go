// Package cli реализует инструмент командной строки outreach.
//
// CLI работает с backend'ом через internal/client и запускает
// Dispatch Orchestrator локально, так же как это делает редактор
// по кнопке Save:
//
//	outreach save -f campaign.json        # сохранить и запланировать письма
//	outreach plan -f campaign.json        # только посчитать время отправки
//	outreach lists create "Q4 leads"
//	outreach emails list --status PENDING --json | jq .
//
// Данные выводятся в stdout (таблица или JSON с --json),
// сообщения и переходы состояний — в stderr.
//
// Команды создаются фабриками, принимающими clientFn и outputFn —
// замыкания, которые читают PersistentFlags уже после их разбора.
package cli
