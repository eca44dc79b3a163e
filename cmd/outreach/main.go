// Outreach CLI — сохранение, планирование и просмотр кампаний
// через HTTP API.
//
// Использование:
//
//	outreach [--api-url URL] [--json] <command> [flags]
//
// Команды:
//
//	save    Сохранить граф и поставить письма в расписание
//	plan    Показать время отправки каждого письма
//	flow    Сохранённые графы
//	lists   Списки лидов
//	emails  Запланированные письма
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/shaiso/Outreach/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	// API_URL и LOG_LEVEL можно положить в .env рядом с графами
	_ = godotenv.Load()

	if err := cli.NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
