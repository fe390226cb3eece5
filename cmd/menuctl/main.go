package main

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VijayGit-Hub/menu-upload-system/internal/client"
)

const (
	envServerURL     = "MENU_SERVER_URL"
	defaultServerURL = "http://localhost:3000"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:           "menuctl",
		Short:         "Клиент сервиса ежедневных меню",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultURL := defaultServerURL
	if v, ok := os.LookupEnv(envServerURL); ok && v != "" {
		defaultURL = v
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultURL,
		fmt.Sprintf("Адрес сервера (env: %s)", envServerURL))

	api := func() client.Client { return client.NewHTTPClient(serverURL) }

	root.AddCommand(
		newVerifyCmd(api),
		newUploadCmd(api),
		newListCmd(api),
		newDownloadCmd(api),
	)
	return root
}

// verifyVendor проверяет PIN и возвращает имя поставщика.
func verifyVendor(cmd *cobra.Command, c client.Client, pin string) (string, error) {
	res, err := c.VerifyPin(cmd.Context(), pin)
	if err != nil {
		return "", err
	}
	if !res.Authorized {
		return "", fmt.Errorf("%w: %s", errPinRejected, res.Message)
	}
	return res.VendorName, nil
}

func newVerifyCmd(api func() client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <pin>",
		Short: "Проверить PIN-код поставщика",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := verifyVendor(cmd, api(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Поставщик: %s\n", name)
			return nil
		},
	}
}

func newUploadCmd(api func() client.Client) *cobra.Command {
	var pin string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Загрузить изображение меню на сегодня",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := api()
			name, err := verifyVendor(cmd, c, pin)
			if err != nil {
				return err
			}

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("ошибка открытия файла меню: %w", err)
			}
			defer f.Close()

			res, err := c.UploadMenu(cmd.Context(), client.Upload{
				VendorName:  name,
				Filename:    filepath.Base(path),
				ContentType: mime.TypeByExtension(filepath.Ext(path)),
				Body:        f,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Меню %s загружено: %s (%s %s)\n",
				res.VendorData.VendorName, res.VendorData.ImageURL,
				res.VendorData.UploadDate, res.VendorData.UploadTime)
			return nil
		},
	}
	cmd.Flags().StringVar(&pin, "pin", "", "PIN-код поставщика")
	_ = cmd.MarkFlagRequired("pin")
	return cmd
}

func newListCmd(api func() client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать меню за сегодня",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			menus, err := api().TodayMenus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(menus) == 0 {
				fmt.Fprintln(out, "Сегодня меню еще не загружены")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ПОСТАВЩИК\tВРЕМЯ\tИЗОБРАЖЕНИЕ")
			for _, m := range menus {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.VendorName, m.UploadTime, m.ImageURL)
			}
			return tw.Flush()
		},
	}
}

func newDownloadCmd(api func() client.Client) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <imageUrl>",
		Short: "Скачать изображение меню",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := api().DownloadImage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer body.Close()

			if output == "" {
				output = filepath.Base(args[0])
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("ошибка создания файла: %w", err)
			}
			n, err := io.Copy(f, body)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return fmt.Errorf("ошибка сохранения изображения: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Сохранено %s (%d байт)\n", output, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Путь для сохранения (по умолчанию имя файла из ссылки)")
	return cmd
}

var errPinRejected = errors.New("PIN-код отклонен")
