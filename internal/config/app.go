package config

type AppConfig struct {
	Server ServerConfig
	Games  GamesConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	gamesCfg, err := LoadGames()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Games:  gamesCfg,
		Log:    logCfg,
	}, nil
}
