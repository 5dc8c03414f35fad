package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mednet-dev/surgery-scheduler/backend/internal/config"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/domain"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/handler"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/repository"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/scheduler"
	"github.com/mednet-dev/surgery-scheduler/backend/internal/trigger"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	/**********************************************
	 * 创建 repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 确保数据库中存在初始管理员
	 **********************************************/
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("无法生成初始管理员密码哈希", "error", err)
		return
	}
	initialAdmin := &domain.User{
		Username:     cfg.InitialAdmin.Username,
		PasswordHash: string(passwordHash),
		FullName:     cfg.InitialAdmin.FullName,
		Email:        cfg.InitialAdmin.Email,
		Role:         domain.RoleAdmin,
	}
	if err := repo.CreateUser(initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "users_username_key":
				// 如果返回这个错误，说明数据库中已经存在初始管理员，不处理
			default:
				logger.Error("无法创建初始管理员", "error", err)
				return
			}
		default:
			logger.Error("无法创建初始管理员", "error", err)
			return
		}
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	// 声明队列
	_, err = ch.QueueDeclare(
		"report_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	/**********************************************
	 * 创建触发器
	 **********************************************/
	runner := newSchedulingRunner(cfg, repo, ch, rdb)
	trig := trigger.New(
		cfg.Trigger.CountThreshold,
		time.Duration(cfg.Trigger.AgeThreshold)*time.Minute,
		time.Duration(cfg.Redis.RunLockExpiration)*time.Second,
		runner,
		rdb,
	)

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, ch, rdb, trig)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器和定时触发 goroutine
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	tickerDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Trigger.TickInterval) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tickCtx, tickCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Trigger.RunTimeout)*time.Second)
				trig.Tick(tickCtx)
				tickCancel()
			case <-tickerDone:
				return
			}
		}
	}()

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")
	close(tickerDone)

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}

// newSchedulingRunner 组装一次完整的后台排程运行：
// 从数据库加载输入，执行两阶段排程，事务落库，缓存运行摘要并发布报告邮件。
// 队列里的手术只是触发信号，待排手术以数据库状态为准
func newSchedulingRunner(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) trigger.Runner {
	return func(ctx context.Context, cause string, batch []*domain.Surgery) error {
		started := time.Now()

		surgeries, err := repo.GetSurgeriesByStatus(domain.SurgeryStatusPending)
		if err != nil {
			return fmt.Errorf("加载待排手术失败: %w", err)
		}
		if len(surgeries) == 0 {
			surgeries = batch
		}

		rooms, err := repo.GetAllRooms()
		if err != nil {
			return fmt.Errorf("加载手术室失败: %w", err)
		}

		rosters, err := repo.GetDoctorRosters()
		if err != nil {
			return fmt.Errorf("加载医师排班表失败: %w", err)
		}

		// 本次涉及日期的已有排程会预先占用手术室时间线
		dates := make(map[string]time.Time)
		for _, s := range surgeries {
			dates[s.DateKey()] = s.SurgeryDate
		}
		existing := make([]*domain.ScheduleResult, 0)
		for _, date := range dates {
			results, err := repo.GetScheduleResultsByDate(date)
			if err != nil {
				return fmt.Errorf("加载已有排程失败: %w", err)
			}
			existing = append(existing, results...)
		}

		schedCfg := scheduler.DefaultConfig()
		schedCfg.GAPopulation = cfg.Optimizer.Population
		schedCfg.GAGenerations = cfg.Optimizer.Generations
		schedCfg.CrossoverRate = &cfg.Optimizer.CrossoverRate
		schedCfg.MutationRate = &cfg.Optimizer.MutationRate
		schedCfg.ElitismRate = &cfg.Optimizer.ElitismRate
		schedCfg.Seed = cfg.Optimizer.Seed

		sched, err := scheduler.New(schedCfg)
		if err != nil {
			return err
		}

		results, failed, reasons, err := sched.Schedule(surgeries, rooms, existing, rosters)
		if err != nil {
			return err
		}

		failedIDs := make([]string, 0, len(failed))
		for _, s := range failed {
			if note, ok := reasons[s.SurgeryID]; ok {
				s.DiagnosticNote = note
			}
			failedIDs = append(failedIDs, s.SurgeryID)
		}

		run := &domain.SchedulingRun{
			TriggeredBy:  cause,
			SurgeryCount: len(surgeries),
			SuccessCount: len(results),
			FailedCount:  len(failed),
			StartedAt:    started,
			FinishedAt:   time.Now(),
		}
		if err := repo.InsertRunWithResults(run, results, failed); err != nil {
			return fmt.Errorf("保存排程结果失败: %w", err)
		}

		// 缓存最近一次运行摘要，状态接口优先读缓存
		if data, err := json.Marshal(run); err == nil {
			if err := rdb.Set(ctx, handler.LatestRunCacheKey, data, 0).Err(); err != nil {
				slog.Error("缓存运行摘要失败", "error", err)
			}
		}

		// 发布运行报告邮件
		mailMessage := domain.MailMessage{
			Type: "run_report",
			To:   cfg.Email.ReportRecipient,
			Data: domain.RunReportMailData{
				FullName:     "排程员",
				RunID:        run.ID,
				SurgeryCount: run.SurgeryCount,
				SuccessCount: run.SuccessCount,
				FailedCount:  run.FailedCount,
				FailedIDs:    failedIDs,
			},
		}
		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("序列化报告邮件失败", "error", err)
			return nil
		}

		publishCtx, publishCancel := context.WithTimeout(ctx, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
		defer publishCancel()

		if err := mailCh.PublishWithContext(
			publishCtx,
			"",
			"report_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		); err != nil {
			// 报告邮件失败不影响排程结果本身
			slog.Error("发布报告邮件失败", "error", err)
		}

		return nil
	}
}
