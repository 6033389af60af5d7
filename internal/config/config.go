package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	AddComments     bool         `mapstructure:"add_comments"`
	PreserveHeaders bool         `mapstructure:"preserve_headers"`
	RemapTools      bool         `mapstructure:"remap_tools"`
	ToolStart       int          `mapstructure:"tool_start"`
	Template        string       `mapstructure:"template"`
	TemplatesFile   string       `mapstructure:"templates_file"`
	Output          string       `mapstructure:"output"`
	OutputFile      string       `mapstructure:"output_file"`
	Server          ServerConfig `mapstructure:"server"`
	Load            LoadConfig   `mapstructure:"load"`
	Log             LogConfig    `mapstructure:"log"`
	ColorError      string       `mapstructure:"color_error"`
	ColorWarning    string       `mapstructure:"color_warning"`
	ColorOK         string       `mapstructure:"color_ok"`
	ColorDim        string       `mapstructure:"color_dim"`
	ColorAccent     string       `mapstructure:"color_accent"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
	CacheSize   int    `mapstructure:"cache_size"`
}

// LoadConfig configures input file loading
type LoadConfig struct {
	Jobs int `mapstructure:"jobs"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// C is the global config instance
var C Config

// SetDefaults registers default values for every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("add_comments", true)
	v.SetDefault("preserve_headers", false)
	v.SetDefault("remap_tools", false)
	v.SetDefault("tool_start", 1)
	v.SetDefault("template", "none")
	v.SetDefault("templates_file", "")
	v.SetDefault("output", "print") // print, file, copy
	v.SetDefault("output_file", "")
	v.SetDefault("server.addr", ":8787")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.cache_size", 256) // Validation reports kept per content hash
	v.SetDefault("load.jobs", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console") // console or json
	v.SetDefault("color_error", "31")     // Red
	v.SetDefault("color_warning", "33")   // Yellow
	v.SetDefault("color_ok", "32")        // Green
	v.SetDefault("color_dim", "90")       // Gray
	v.SetDefault("color_accent", "36")    // Cyan
}

// Init initializes configuration with viper
func Init() error {
	// A missing .env is normal
	_ = godotenv.Load()

	SetDefaults(viper.GetViper())

	viper.SetConfigName("ncmerge")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "ncmerge"))
		viper.AddConfigPath(home)
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("NCMERGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Try to read config, but don't fail if not found or malformed
	_ = viper.ReadInConfig()

	return viper.Unmarshal(&C)
}

// GetAddComments returns whether merges add banner comments
func GetAddComments() bool {
	return viper.GetBool("add_comments")
}

// GetPreserveHeaders returns whether the first file's % and O-number are kept
func GetPreserveHeaders() bool {
	return viper.GetBool("preserve_headers")
}

// GetRemapTools returns whether tool numbers are remapped
func GetRemapTools() bool {
	return viper.GetBool("remap_tools")
}

// GetToolStart returns the first remapped tool number
func GetToolStart() int {
	return viper.GetInt("tool_start")
}

// GetTemplate returns the selected template name
func GetTemplate() string {
	return viper.GetString("template")
}

// GetTemplatesFile returns the path of the user template file with tilde expansion
func GetTemplatesFile() string {
	return expandTilde(viper.GetString("templates_file"))
}

// GetOutput returns the output mode
func GetOutput() string {
	return viper.GetString("output")
}

// GetOutputFile returns the output file path with tilde expansion
func GetOutputFile() string {
	return expandTilde(viper.GetString("output_file"))
}

// GetServerAddr returns the HTTP listen address
func GetServerAddr() string {
	return viper.GetString("server.addr")
}

// GetMaxUploadBytes returns the request body limit for uploads
func GetMaxUploadBytes() int64 {
	return int64(viper.GetInt("server.max_upload_mb")) << 20
}

// GetCacheSize returns how many validation reports the server keeps
func GetCacheSize() int {
	return viper.GetInt("server.cache_size")
}

// GetLoadJobs returns how many files are read concurrently
func GetLoadJobs() int {
	return viper.GetInt("load.jobs")
}

// GetLogLevel returns the log level
func GetLogLevel() string {
	return viper.GetString("log.level")
}

// GetLogFormat returns the log encoding
func GetLogFormat() string {
	return viper.GetString("log.format")
}

// GetColorError returns ANSI color code for errors
func GetColorError() string {
	return viper.GetString("color_error")
}

// GetColorWarning returns ANSI color code for warnings
func GetColorWarning() string {
	return viper.GetString("color_warning")
}

// GetColorOK returns ANSI color code for success
func GetColorOK() string {
	return viper.GetString("color_ok")
}

// GetColorDim returns ANSI color code for secondary text
func GetColorDim() string {
	return viper.GetString("color_dim")
}

// GetColorAccent returns ANSI color code for headings
func GetColorAccent() string {
	return viper.GetString("color_accent")
}

// SetOutput sets output mode at runtime
func SetOutput(mode string) {
	viper.Set("output", mode)
	C.Output = mode
}

// SetTemplate sets the template name at runtime
func SetTemplate(name string) {
	viper.Set("template", name)
	C.Template = name
}

// expandTilde expands ~ to the user's home directory
func expandTilde(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
