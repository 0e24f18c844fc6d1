package main

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/salespilots/paylock/internal/api"
	"github.com/salespilots/paylock/models"
	"github.com/spf13/cobra"
)

const (
	envServerURL     = "PAYLOCK_SERVER_URL"
	defaultServerURL = "https://localhost:8443"
	requestTimeout   = 30 * time.Second
)

// options - общие флаги всех команд.
type options struct {
	serverURL string
	tokenFile string
	insecure  bool
	debug     bool
}

// newRootCmd собирает дерево команд.
func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "paylockctl",
		Short:         "Управление защищёнными платёжными конфигурациями PayLock",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}

	serverURL := os.Getenv(envServerURL)
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.serverURL, "server", serverURL, "URL сервера PayLock (env: "+envServerURL+")")
	flags.StringVar(&opts.tokenFile, "token-file", defaultTokenPath(), "Файл для хранения токена сессии")
	flags.BoolVar(&opts.insecure, "insecure", false, "Не проверять TLS-сертификат сервера (только для разработки)")
	flags.BoolVar(&opts.debug, "debug", false, "Подробный лог в stderr")

	rootCmd.AddCommand(
		registerCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		stateCmd(opts),
		saveCmd(opts),
		confirmCmd(opts),
		unlockCmd(opts),
		lockCmd(opts),
		resetCmd(opts),
		qrCmd(opts),
	)
	return rootCmd
}

// newClient создает API клиент без токена.
func (o *options) newClient() api.Client {
	hc := &http.Client{Timeout: requestTimeout}
	if o.insecure {
		hc.Transport = &http.Transport{
			//nolint:gosec // Явно запрошено флагом --insecure для самоподписанных сертификатов
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	slog.Debug("API клиент инициализирован", "baseURL", o.serverURL, "insecure", o.insecure)
	return api.NewHTTPClient(o.serverURL, hc)
}

// authClient создает API клиент с сохранённым токеном.
func (o *options) authClient(cmd *cobra.Command) (api.Client, error) {
	token, err := newTokenStore(o.tokenFile).Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	client := o.newClient()
	client.SetAuthToken(token)
	return client, nil
}

func registerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Зарегистрировать пользователя (пароль читается из stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			if err = opts.newClient().Register(cmd.Context(), args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Пользователь %s зарегистрирован\n", args[0])
			return nil
		},
	}
}

func loginCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Войти и сохранить токен сессии (пароль читается из stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			token, err := opts.newClient().Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			if err = newTokenStore(opts.tokenFile).Save(cmd.Context(), token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Вход выполнен")
			return nil
		},
	}
}

func logoutCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Удалить сохранённый токен сессии",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := newTokenStore(opts.tokenFile).Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Токен удалён")
			return nil
		},
	}
}

func stateCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "state <config>",
		Short: "Показать состояние конфигурации",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			state, err := client.GetConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}
			printState(cmd.OutOrStdout(), state)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Вывод в формате JSON")
	return cmd
}

func saveCmd(opts *options) *cobra.Command {
	var (
		rawFields []string
		confirm   bool
	)
	cmd := &cobra.Command{
		Use:   "save <config>",
		Short: "Предложить новые значения (вступают в силу после confirm)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(rawFields)
			if err != nil {
				return err
			}
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}

			resp, err := client.RequestSave(cmd.Context(), args[0], fields)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), &resp.Result)
			if !confirm {
				fmt.Fprintf(cmd.OutOrStdout(), "Для применения: paylockctl confirm %s %s\n", args[0], resp.PendingActionID)
				return nil
			}

			res, err := client.ConfirmSave(cmd.Context(), args[0], resp.PendingActionID)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&rawFields, "field", "f", nil, "Поле в формате name=value (можно повторять)")
	cmd.Flags().BoolVarP(&confirm, "yes", "y", false, "Сразу подтвердить сохранение")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func confirmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <config> <pending-action-id>",
		Short: "Подтвердить ожидающее сохранение",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			res, err := client.ConfirmSave(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func unlockCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <config>",
		Short: "Разблокировать конфигурацию (пароль читается из stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			res, err := client.Unlock(cmd.Context(), args[0], password)
			if err != nil {
				return explain(err)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func lockCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <config>",
		Short: "Заблокировать конфигурацию без сохранения",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			res, err := client.Lock(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func resetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <config>",
		Short: "Удалить конфигурацию (пароль читается из stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			res, err := client.Reset(cmd.Context(), args[0], password)
			if err != nil {
				return explain(err)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func qrCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "Изображения QR-кодов оплаты",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "upload <config> <file>",
		Short: "Загрузить изображение и вывести ссылку для поля qrImageBlobRef",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("ошибка чтения файла %s: %w", args[1], err)
			}
			ref, err := client.UploadQRImage(cmd.Context(), args[0],
				bytes.NewReader(data), int64(len(data)), http.DetectContentType(data))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ref)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "download <config> <file>",
		Short: "Скачать изображение QR-кода в файл",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.authClient(cmd)
			if err != nil {
				return err
			}
			body, _, err := client.DownloadQRImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			out, err := os.Create(args[1])
			if err != nil {
				return fmt.Errorf("ошибка создания файла %s: %w", args[1], err)
			}
			if _, err = io.Copy(out, body); err != nil {
				_ = out.Close()
				return fmt.Errorf("ошибка записи файла %s: %w", args[1], err)
			}
			return out.Close()
		},
	})
	return cmd
}

// readPassword читает пароль из первой строки stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Пароль: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("ошибка чтения пароля: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("пароль не может быть пустым")
	}
	return password, nil
}

// parseFields разбирает значения флага --field в упорядоченный набор полей.
func parseFields(raw []string) (models.Fields, error) {
	var fields models.Fields
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("поле должно иметь вид name=value: %q", item)
		}
		fields = fields.Set(strings.TrimSpace(name), value)
	}
	return fields, nil
}

// explain дополняет отказ сервера подсказкой о повторе.
func explain(err error) error {
	var resErr *api.ResultError
	if errors.As(err, &resErr) && resErr.RetryAfter > 0 {
		return fmt.Errorf("%w; повторите через %s", err, resErr.RetryAfter)
	}
	return err
}

func printResult(w io.Writer, res *models.ResultResponse) {
	fmt.Fprintf(w, "[%s] %s (state=%s, version=%d)\n", res.Level, res.Message, res.State, res.Version)
}

func printState(w io.Writer, state *models.ConfigStateResponse) {
	fmt.Fprintf(w, "Конфигурация: %s\n", state.Name)
	fmt.Fprintf(w, "  Состояние:  %s\n", state.State)
	fmt.Fprintf(w, "  Версия:     %d\n", state.Version)
	if state.LastSavedAt != nil {
		fmt.Fprintf(w, "  Сохранена:  %s\n", state.LastSavedAt.Format(time.RFC3339))
	}
	if state.PendingAction != "" && state.PendingAction != "none" {
		fmt.Fprintf(w, "  Ожидает:    %s %s\n", state.PendingAction, state.PendingActionID)
	}
	if len(state.Fields) == 0 {
		return
	}
	title := "  Поля:"
	if state.Redacted {
		title = "  Поля (скрыты):"
	}
	fmt.Fprintln(w, title)
	for _, f := range state.Fields {
		fmt.Fprintf(w, "    %s = %s\n", f.Name, f.Value)
	}
}
