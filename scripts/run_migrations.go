package main

import (
	"flag"
	"log"

	"vestingcontrol/pkg/config"
)

func main() {
	// 解析命令行参数
	rollback := flag.Bool("rollback", false, "回滚最近一次迁移")
	flag.Parse()

	config.InitDB()

	if *rollback {
		config.RollbackMigration()
		return
	}

	config.ExecuteMigrations()
	log.Println("done")
}
