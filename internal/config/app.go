package config

type AppConfig struct {
	Server     ServerConfig
	Chain      ChainConfig
	Ledger     LedgerConfig
	Reconciler ReconcilerConfig
	Log        LogConfig
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
	chainCfg, err := LoadChain()
	if err != nil {
		return AppConfig{}, err
	}
	ledgerCfg, err := LoadLedger()
	if err != nil {
		return AppConfig{}, err
	}
	reconcilerCfg, err := LoadReconciler()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:     serverCfg,
		Chain:      chainCfg,
		Ledger:     ledgerCfg,
		Reconciler: reconcilerCfg,
		Log:        logCfg,
	}, nil
}
