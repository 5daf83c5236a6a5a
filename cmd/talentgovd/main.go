// talentgovd 资源治理核心守护进程
//
// 加载配置，启动治理核心与状态接口，等待信号退出。
// 预测分析协作方在部署侧注入；独立运行时使用占位实现。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/talentmesh/go-talentmesh-core/analytics"
	"github.com/talentmesh/go-talentmesh-core/config"
	"github.com/talentmesh/go-talentmesh-core/governor"
	"github.com/talentmesh/go-talentmesh-core/logger"
	"github.com/talentmesh/go-talentmesh-core/statusapi"
	"go.uber.org/zap"
)

var errNoCollaborator = errors.New("analytics collaborator not configured")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	var statusAddr string

	cmd := &cobra.Command{
		Use:   "talentgovd",
		Short: "TalentMesh resource governance daemon",
		Long: "Runs the process-wide rate limiting, load classification and\n" +
			"demand-driven update core, with a read-only status HTTP surface.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, statusAddr)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path (default: ./configs/governor.yaml)")
	cmd.Flags().StringVar(&statusAddr, "status-addr", "", "status API listen address override")

	return cmd
}

func run(configFile, statusAddr string) error {
	loader := config.NewLoader(config.Options{ConfigFile: configFile})
	if err := loader.Load(); err != nil {
		return err
	}

	var logCfg logger.ManagerConfig
	if loader.IsSet("logger") {
		if err := loader.Unmarshal("logger", &logCfg); err != nil {
			return fmt.Errorf("unmarshal logger config failed: %w", err)
		}
	}
	logger.InitManager(logCfg)
	log := logger.GetLogger("talentgovd")

	govCfg := governor.DefaultConfig()
	if loader.IsSet("governor") {
		if err := loader.Unmarshal("governor", &govCfg); err != nil {
			return fmt.Errorf("unmarshal governor config failed: %w", err)
		}
	}

	// 独立运行没有真实的分析子系统：占位协作方让 CoordinateOperation
	// 以 error 结果返回，而不是假装成功
	placeholder := analytics.CollaboratorFunc(
		func(ctx context.Context, opType string, payload interface{}) (interface{}, error) {
			return nil, errNoCollaborator
		})

	gov, err := governor.New(govCfg, placeholder, governor.WithLogger(log))
	if err != nil {
		return err
	}

	statusCfg := statusapi.DefaultConfig()
	if loader.IsSet("statusapi") {
		if err := loader.Unmarshal("statusapi", &statusCfg); err != nil {
			return fmt.Errorf("unmarshal statusapi config failed: %w", err)
		}
	}
	if statusAddr != "" {
		statusCfg.Addr = statusAddr
	}

	status, err := statusapi.NewServer(statusCfg, gov, statusapi.WithServerLogger(log))
	if err != nil {
		return err
	}

	if err := gov.Start(); err != nil {
		return err
	}
	if err := status.Start(); err != nil {
		_ = gov.Stop()
		return err
	}

	log.Info("✅ talentgovd 运行中",
		zap.String("status_addr", statusCfg.Addr),
		zap.Strings("config_files", loader.LoadedFiles()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("⏳ 收到退出信号，开始优雅停机")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	if err := status.Stop(shutdownCtx); err != nil {
		firstErr = err
	}
	if err := gov.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}

	log.Info("👋 talentgovd 已退出")
	return firstErr
}
