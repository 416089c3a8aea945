package main

import (
	"flag"

	"festgo.app/configs/configsdatabase"
	"festgo.app/configs/configslog"
	"festgo.app/database"
)

func main() {
	configslog.InitLogger()
	defer configslog.SyncLogger()

	migrateFlag := flag.Bool("migrate", false, "run the ordered schema migrations")
	seedFlag := flag.Bool("seed", false, "run the idempotent seeders")
	flag.Parse()

	configsdatabase.InitDB()
	defer configsdatabase.CloseDB()

	db := configsdatabase.GetDB()
	database.Initialize(db, *migrateFlag, *seedFlag)
}
