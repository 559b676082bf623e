package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oxygene76/vecmath/pkg/analysis"
	"github.com/oxygene76/vecmath/pkg/server"
	"github.com/oxygene76/vecmath/pkg/utils"
	"github.com/oxygene76/vecmath/pkg/vecmath"
)

const version = "v1.0.0"

// app carries state shared by all commands
type app struct {
	cfgFile string
	verbose bool

	cfg    *utils.Config
	logger log.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "vecmath",
		Short: "3D vector math toolkit",
		Long: `vecmath evaluates vector operations used by graphics and physics code:
spherical conversion, frame construction, rotation and reflection.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.vecmath/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		a.initCmd(),
		a.sphericalCmd(),
		a.cartesianCmd(),
		a.rotateCmd(),
		a.frameCmd(),
		a.reflectCmd(),
		a.normalizeCmd(),
		a.sampleCmd(),
		a.serveCmd(),
	)

	return rootCmd
}

func (a *app) initConfig(cmd *cobra.Command) error {
	cfg, used, err := utils.LoadConfig(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := utils.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if used != "" {
		logger.Debug("using config file", "path", used)
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *app) initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				path = filepath.Join(utils.DefaultConfigDir(), "config.yaml")
			}
			if err := utils.SaveConfig(utils.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().String("path", "", "where to write the config file")

	return cmd
}

func (a *app) sphericalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spherical r theta phi",
		Short: "Convert spherical coordinates to a vector",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFloats(args)
			if err != nil {
				return err
			}

			up := a.cfg.UpDirection()
			if name, _ := cmd.Flags().GetString("up"); name != "" {
				if up, err = vecmath.ParseUpDirection(name); err != nil {
					return err
				}
			}

			v, err := vecmath.FromSphericalUp(f[0], f[1], f[2], up)
			if err != nil {
				return err
			}
			printVector(cmd.OutOrStdout(), v)
			return nil
		},
	}

	cmd.Flags().String("up", "", "up axis: x, y or z (default from config)")

	return cmd
}

func (a *app) cartesianCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cartesian x y z",
		Short: "Convert a vector to polar angle and azimuth",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVector(args)
			if err != nil {
				return err
			}
			theta, phi := vecmath.ToSpherical(v)
			fmt.Fprintf(cmd.OutOrStdout(), "theta=%g phi=%g\n", theta, phi)
			return nil
		},
	}
}

func (a *app) rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate x y z theta phi",
		Short: "Tilt a vector by theta at azimuth phi around itself",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFloats(args)
			if err != nil {
				return err
			}
			printVector(cmd.OutOrStdout(), vecmath.Rotate(vecmath.New(f[0], f[1], f[2]), f[3], f[4]))
			return nil
		},
	}
}

func (a *app) frameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frame x y z",
		Short: "Build tangent and binormal for a normal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseVector(args)
			if err != nil {
				return err
			}
			tangent, binormal := vecmath.MakeBiNormalTangent(n)
			fmt.Fprintf(cmd.OutOrStdout(), "tangent=%s binormal=%s\n", tangent, binormal)
			return nil
		},
	}
}

func (a *app) reflectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflect vx vy vz nx ny nz",
		Short: "Reflect a vector about an axis",
		Args:  cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFloats(args)
			if err != nil {
				return err
			}
			v := vecmath.New(f[0], f[1], f[2])
			n := vecmath.New(f[3], f[4], f[5])
			printVector(cmd.OutOrStdout(), vecmath.Reflect(v, n))
			return nil
		},
	}
}

func (a *app) normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize x y z",
		Short: "Scale a vector to unit length",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseVector(args)
			if err != nil {
				return err
			}
			unit := vecmath.Normalize(v)
			if unit.IsNaN() {
				a.logger.Warn("normalize produced NaN", "vector", v.String())
			}
			printVector(cmd.OutOrStdout(), unit)
			return nil
		},
	}
}

func (a *app) sampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Measure frame and rotation error over random normals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count := a.cfg.Sample.Count
			seed := a.cfg.Sample.Seed
			tolerance := a.cfg.Math.Epsilon
			if cmd.Flags().Changed("count") {
				count, _ = cmd.Flags().GetInt("count")
			}
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetInt64("seed")
			}
			if cmd.Flags().Changed("tolerance") {
				tolerance, _ = cmd.Flags().GetFloat64("tolerance")
			}

			a.logger.Debug("sampling frames", "count", count, "seed", seed, "tolerance", tolerance)
			report, err := analysis.SampleFrames(count, seed, tolerance)
			if err != nil {
				return err
			}
			if report.OutOfTolerance > 0 {
				a.logger.Warn("frames out of tolerance", "frames", report.OutOfTolerance, "tolerance", tolerance)
			}

			out, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to marshal report: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().Int("count", 0, "number of normals (default from config)")
	cmd.Flags().Int64("seed", 0, "random seed (default from config)")
	cmd.Flags().Float64("tolerance", 0, "error above which a frame is counted (default math.epsilon)")

	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve vector operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port, _ = cmd.Flags().GetInt("port")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(a.cfg, a.logger).Start(ctx)
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on (default from config)")

	return cmd
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, s := range args {
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseVector(args []string) (vecmath.Vector3, error) {
	f, err := parseFloats(args)
	if err != nil {
		return vecmath.Vector3{}, err
	}
	return vecmath.New(f[0], f[1], f[2]), nil
}

func printVector(w io.Writer, v vecmath.Vector3) {
	v.Dump(w)
}
