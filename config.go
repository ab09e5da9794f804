package lunohod

import (
	"fmt"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"

	"github.com/kozatem-glitch/Lunohod-I/integrator"
)

// EnvPrefix prefixes the environment variables overriding a scenario, e.g. LUNOHOD_STAGING_CUTOFF.
const EnvPrefix = "LUNOHOD"

// MissionConfig defines the span of a run.
type MissionConfig struct {
	Horizon       float64   `mapstructure:"horizon"`        // s
	TelemetryStep float64   `mapstructure:"telemetry_step"` // Sampling of the simulated telemetry (s)
	Launch        time.Time `mapstructure:"-"`              // Launch epoch, zero if unknown
}

// OutputConfig defines where the products of a run are written.
type OutputConfig struct {
	Dir       string `mapstructure:"dir"`
	Filename  string `mapstructure:"filename"`
	Timestamp bool   `mapstructure:"timestamp"`
	Plot      bool   `mapstructure:"plot"`
}

// Scenario is the whole configuration of a run.
type Scenario struct {
	Mission    MissionConfig     `mapstructure:"mission"`
	Constants  PhysicalConstants `mapstructure:"constants"`
	Staging    StagingSchedule   `mapstructure:"staging"`
	Pitch      PitchProgram      `mapstructure:"pitch"`
	Initial    State             `mapstructure:"initial"`
	Integrator integrator.Config `mapstructure:"integrator"`
	Reference  string            `mapstructure:"reference"` // Path to a flight recording, may be empty
	Output     OutputConfig      `mapstructure:"output"`
}

// DefaultScenario returns the Lunohod ascent from Kerbin.
func DefaultScenario() Scenario {
	c := KerbinConstants()
	return Scenario{
		Mission:    MissionConfig{Horizon: DefaultHorizon, TelemetryStep: 0.5},
		Constants:  c,
		Staging:    StagingSchedule{Cutoff: DefaultCutoff, Reignition: DefaultReignition},
		Pitch:      DefaultPitchProgram(),
		Initial:    LaunchState(c.Radius, DefaultLaunchMass),
		Integrator: DefaultIntegratorConfig(),
		Output:     OutputConfig{Dir: ".", Filename: "lunohod"},
	}
}

// ExportConfig returns how to export the products of this scenario.
func (s Scenario) ExportConfig() ExportConfig {
	return ExportConfig{OutputDir: s.Output.Dir, Filename: s.Output.Filename, Timestamp: s.Output.Timestamp, Launch: s.Mission.Launch}
}

// LoadScenario reads a TOML scenario. Every key is optional and falls back to DefaultScenario.
// Environment variables override the file. An empty path only reads the defaults and the environment.
// The initial position defaults to the launch site of the configured body radius.
func LoadScenario(path string) (Scenario, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// After the prefix: BindEnv resolves the variable names immediately.
	setDefaults(v, DefaultScenario())
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Scenario{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	var sc Scenario
	if err := v.Unmarshal(&sc); err != nil {
		return Scenario{}, fmt.Errorf("scenario %s: %w", path, err)
	}
	if len(sc.Pitch) == 0 {
		sc.Pitch = DefaultPitchProgram()
	}
	if !v.IsSet("initial.y") {
		sc.Initial.Y = sc.Constants.Radius
	}
	sc.Mission.Launch = confReadJDEorTime(v, "mission.launch")
	return sc, nil
}

func setDefaults(v *viper.Viper, sc Scenario) {
	c := sc.Constants
	i := sc.Integrator
	for key, value := range map[string]interface{}{
		"mission.horizon":              sc.Mission.Horizon,
		"mission.telemetry_step":       sc.Mission.TelemetryStep,
		"constants.mu":                 c.Mu,
		"constants.radius":             c.Radius,
		"constants.drag_coefficient":   c.DragCoefficient,
		"constants.reference_area":     c.ReferenceArea,
		"constants.sea_level_density":  c.SeaLevelDensity,
		"constants.scale_height":       c.ScaleHeight,
		"constants.atmosphere_ceiling": c.AtmosphereCeiling,
		"constants.isp":                c.Isp,
		"constants.standard_gravity":   c.StandardGravity,
		"constants.thrust":             c.Thrust,
		"constants.dry_mass":           c.DryMass,
		"staging.cutoff":               sc.Staging.Cutoff,
		"staging.reignition":           sc.Staging.Reignition,
		"initial.x":                    sc.Initial.X,
		"initial.vx":                   sc.Initial.VX,
		"initial.vy":                   sc.Initial.VY,
		"initial.mass":                 sc.Initial.Mass,
		"integrator.rtol":              i.RelTol,
		"integrator.atol":              i.AbsTol,
		"integrator.max_step":          i.MaxStep,
		"integrator.initial_step":      i.InitialStep,
		"integrator.min_step":          i.MinStep,
		"integrator.max_steps":         i.MaxSteps,
		"reference":                    sc.Reference,
		"output.dir":                   sc.Output.Dir,
		"output.filename":              sc.Output.Filename,
		"output.timestamp":             sc.Output.Timestamp,
		"output.plot":                  sc.Output.Plot,
	} {
		v.SetDefault(key, value)
	}
	// No default: it depends on the configured radius.
	v.BindEnv("initial.y")
	v.BindEnv("mission.launch")
}

// confReadJDEorTime reads a date either as a Julian date or as a time.
func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time) {
	if !v.IsSet(key) {
		return
	}
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt = v.GetTime(key)
	} else {
		dt = julian.JDToTime(jde)
	}
	return
}
