// Команда paylockctl - клиент командной строки для сервера PayLock.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

// version устанавливается через ldflags при сборке.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Ошибка:", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop вызван вручную перед выходом
	}
}
