// Package utils holds the configuration and logging plumbing shared by the
// hallmonitor commands: a Viper backed ConfigurationLoader with decode hooks,
// the ConfigurationError type, and a zap LoggerFactory.
package utils
