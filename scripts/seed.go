// 手动初始化题库数据
//
// 服务启动时（非 release 模式）会自动迁移并写入默认题库，
// 此脚本用于 release 环境首次部署、导入额外题目或修复冗余计数。
//
// 用法: go run scripts/seed.go [-config configs] [-catalog extra.yaml] [-recount]

package main

import (
	"faang_prep_backend/internal/config"
	"faang_prep_backend/pkg/database"
	"faang_prep_backend/pkg/logger"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件所在目录")
	catalog := flag.String("catalog", "", "额外导入的 YAML 题库文件")
	recount := flag.Bool("recount", false, "只重新计算各分类/套路的题目数")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	if *recount {
		if err := database.RecountProblemCounts(db); err != nil {
			log.Fatalf("重新计数失败: %v", err)
		}
		log.Println("完成！")
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	if err := database.Seed(db); err != nil {
		log.Fatalf("写入默认题库失败: %v", err)
	}

	if *catalog != "" {
		f, err := os.Open(*catalog)
		if err != nil {
			log.Fatalf("无法打开题库文件: %v", err)
		}
		defer f.Close()

		res, err := database.ImportCatalog(db, f)
		if err != nil {
			log.Fatalf("导入题库失败: %v", err)
		}
		logger.Log.Info("Catalog imported",
			zap.String("file", *catalog),
			zap.Int("topics", res.Topics),
			zap.Int("subtopics", res.Subtopics),
			zap.Int("patterns", res.Patterns),
			zap.Int("problems", res.Problems),
			zap.Int("badges", res.Badges),
		)
	}

	log.Println("完成！")
}
