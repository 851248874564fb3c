// Package server runs signgate's HTTP listeners.
//
// Each Server serves HTTP/1.1 and cleartext HTTP/2 (h2c) on one address and
// shuts down gracefully when its context is cancelled. Run starts several
// servers together and stops all of them when any one fails:
//
//	public := server.New("public", cfg.Listen, handler, server.Options{Logger: logger})
//	admin := server.New("admin", cfg.AdminListen, server.AdminHandler(reg), server.Options{Logger: logger})
//
//	if err := server.Run(ctx, public, admin); err != nil {
//	    log.Fatal(err)
//	}
package server
