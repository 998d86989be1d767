// smartdoc — CLI-клиент SmartDoc. Хранит сессию между запусками в файловом
// Token Store и восстанавливает её при старте через /verify-token.
//
// Использование: smartdoc [--config path] <команда> [аргументы].
// Команды: login, signup, logout, whoami, docs, upload, rm, preview,
// download, ask, share, shares, shared, unshare, feedback, feedback-stats,
// profile, passwd.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ANIRUDH-7600/Smartdoc/internal/config"
	"github.com/ANIRUDH-7600/Smartdoc/internal/gateway"
	"github.com/ANIRUDH-7600/Smartdoc/internal/models"
	"github.com/ANIRUDH-7600/Smartdoc/internal/session"
	filestore "github.com/ANIRUDH-7600/Smartdoc/internal/store/file"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.LoadClient(configPath)
	if err != nil {
		fatal("config: %v", err)
	}

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	stateDir := cfg.StateDir
	if stateDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			fatal("state dir: %v", err)
		}
		stateDir = filepath.Join(base, "smartdoc")
	}

	st, err := filestore.Open(stateDir, cfg.BaseURL, log)
	if err != nil {
		fatal("session store: %v", err)
	}

	client := gateway.New(cfg.BaseURL,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithLogger(log),
	)

	mgr := session.New(client, st, log)

	ctx := context.Background()
	mgr.Initialize(ctx)

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, cmd, args, client, mgr); err != nil {
		fatal("%v", err)
	}
}

func run(ctx context.Context, cmd string, args []string, client *gateway.Client, mgr *session.Manager) error {
	switch cmd {
	case "login":
		return cmdLogin(ctx, args, mgr)
	case "signup":
		return cmdSignup(ctx, args, mgr)
	case "logout":
		mgr.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return cmdWhoami(client, mgr)
	case "docs":
		return cmdDocs(ctx, client, mgr)
	case "upload":
		return cmdUpload(ctx, args, client, mgr)
	case "rm":
		return cmdRemove(ctx, args, client, mgr)
	case "preview":
		return cmdPreview(ctx, args, client, mgr)
	case "download":
		return cmdDownload(ctx, args, client, mgr)
	case "ask":
		return cmdAsk(ctx, args, client, mgr)
	case "share":
		return cmdShare(ctx, args, client, mgr)
	case "shares":
		return cmdShares(ctx, args, client, mgr)
	case "shared":
		return cmdShared(ctx, client, mgr)
	case "unshare":
		return cmdUnshare(ctx, args, client, mgr)
	case "feedback":
		return cmdFeedback(ctx, args, client, mgr)
	case "feedback-stats":
		return cmdFeedbackStats(ctx, client, mgr)
	case "profile":
		return cmdProfile(ctx, args, client, mgr)
	case "passwd":
		return cmdPasswd(ctx, args, client, mgr)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// token возвращает access-токен активной сессии или понятную ошибку.
func token(mgr *session.Manager) (string, error) {
	tok, err := mgr.Token()
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			return "", errors.New("not logged in: run `smartdoc login` first")
		}
		return "", err
	}

	return tok, nil
}

func cmdLogin(ctx context.Context, args []string, mgr *session.Manager) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)

	if *username == "" || *password == "" {
		return errors.New("usage: smartdoc login -u <username> -p <password>")
	}

	if err := mgr.Login(ctx, *username, *password); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Printf("logged in as %s\n", mgr.Snapshot().User.Username)
	return nil
}

func cmdSignup(ctx context.Context, args []string, mgr *session.Manager) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	username := fs.String("u", "", "username")
	email := fs.String("e", "", "email")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)

	if *username == "" || *email == "" || *password == "" {
		return errors.New("usage: smartdoc signup -u <username> -e <email> -p <password>")
	}

	if err := mgr.Signup(ctx, *username, *email, *password); err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	fmt.Printf("account created, logged in as %s\n", mgr.Snapshot().User.Username)
	return nil
}

func cmdWhoami(client *gateway.Client, mgr *session.Manager) error {
	snap := mgr.Snapshot()
	if !snap.IsAuthenticated {
		fmt.Println("anonymous")
		fmt.Printf("server: %s\n", client.BaseURL())
		return nil
	}

	fmt.Printf("user:   %s <%s>\n", snap.User.Username, snap.User.Email)
	fmt.Printf("state:  %s\n", mgr.State())
	fmt.Printf("server: %s\n", client.BaseURL())

	// Срок действия токена читаем без проверки подписи: ключ знает
	// только сервер, а для отображения подпись не нужна.
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(snap.AccessToken, &claims); err == nil && claims.ExpiresAt != nil {
		fmt.Printf("token expires: %s\n", claims.ExpiresAt.Local().Format(time.RFC1123))
	}

	return nil
}

func cmdDocs(ctx context.Context, client *gateway.Client, mgr *session.Manager) error {
	tok, err := token(mgr)
	if err != nil {
		return err
	}

	docs, err := client.ListDocuments(ctx, tok)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("no documents")
		return nil
	}

	for _, d := range docs {
		fmt.Printf("%-6d %-38s %-24s chunks=%d\n", d.ID, d.DocumentID, d.Filename, d.TotalChunks)
	}
	return nil
}

func cmdUpload(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc upload <file>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := client.Upload(ctx, tok, filepath.Base(args[0]), f)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded %s: id=%s chunks=%d\n", res.Filename, res.DocumentID, res.ChunksProcessed)
	return nil
}

func cmdRemove(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc rm <document-id>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	if err := client.DeleteDocument(ctx, tok, args[0]); err != nil {
		return err
	}

	fmt.Println("deleted")
	return nil
}

func cmdPreview(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc preview <document-id>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	p, err := client.Preview(ctx, tok, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s), chunks %d/%d, uploaded %s\n",
		p.Filename, p.FileType, p.ChunksProcessed, p.TotalChunks, p.CreatedAt)
	return nil
}

func cmdDownload(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	out := fs.String("o", "", "output file (default: server-suggested name)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: smartdoc download [-o file] <document-id>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	// Временный файл — в каталоге назначения, иначе rename через
	// границу файловой системы (tmpfs -> диск) падает с EXDEV.
	destDir := "."
	if *out != "" {
		destDir = filepath.Dir(*out)
	}

	tmp, err := os.CreateTemp(destDir, ".smartdoc-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := client.Download(ctx, tok, fs.Arg(0), tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	target := *out
	if target == "" {
		target = name
	}
	if target == "" {
		target = fs.Arg(0) + ".txt"
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return err
	}

	fmt.Printf("saved %s\n", target)
	return nil
}

func cmdAsk(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc ask \"<question>\"")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	ans, err := client.Ask(ctx, tok, args[0])
	if err != nil {
		return err
	}

	fmt.Println(ans.Answer)
	fmt.Printf("\nconfidence: %s", ans.Confidence)
	if len(ans.Sources) > 0 {
		fmt.Print(", sources:")
		for _, s := range ans.Sources {
			fmt.Printf(" %s#%d", s.Filename, s.ChunkIndex)
		}
	}
	fmt.Println()
	if ans.AnswerID != "" {
		fmt.Printf("answer id: %s\n", ans.AnswerID)
	}
	return nil
}

func cmdShare(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	perm := fs.String("perm", models.PermissionView, "permission level: view|edit|admin")
	_ = fs.Parse(args)

	if fs.NArg() != 2 {
		return errors.New("usage: smartdoc share [-perm level] <numeric-doc-id> <email>")
	}
	if !models.ValidPermission(*perm) {
		return fmt.Errorf("invalid permission %q", *perm)
	}

	docID, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid document id %q (use the numeric id from `smartdoc docs`)", fs.Arg(0))
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	share, err := client.ShareDocument(ctx, tok, docID, fs.Arg(1), *perm)
	if err != nil {
		return err
	}

	if share == nil {
		fmt.Println("share permissions updated")
		return nil
	}

	fmt.Printf("shared, share id=%d\n", share.ID)
	return nil
}

func cmdShares(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc shares <document-id>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	shares, err := client.DocumentShares(ctx, tok, args[0])
	if err != nil {
		return err
	}

	if len(shares) == 0 {
		fmt.Println("not shared")
		return nil
	}

	for _, s := range shares {
		fmt.Printf("%-6d user=%d perm=%s since=%s\n", s.ID, s.SharedWithID, s.PermissionLevel, s.CreatedAt)
	}
	return nil
}

func cmdShared(ctx context.Context, client *gateway.Client, mgr *session.Manager) error {
	tok, err := token(mgr)
	if err != nil {
		return err
	}

	docs, err := client.SharedWithMe(ctx, tok)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("nothing shared with you")
		return nil
	}

	for _, d := range docs {
		fmt.Printf("%-38s %-24s from=%s perm=%s\n", d.DocumentID, d.Filename, d.Owner, d.PermissionLevel)
	}
	return nil
}

func cmdUnshare(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	if len(args) != 1 {
		return errors.New("usage: smartdoc unshare <share-id>")
	}

	shareID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid share id %q", args[0])
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	if err := client.DeleteShare(ctx, tok, shareID); err != nil {
		return err
	}

	fmt.Println("share revoked")
	return nil
}

func cmdFeedback(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	fs := flag.NewFlagSet("feedback", flag.ExitOnError)
	rating := fs.Int("rating", 0, "rating 1..5")
	kind := fs.String("type", "", "feedback type: helpful|not_helpful")
	comment := fs.String("comment", "", "free-form comment")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("usage: smartdoc feedback [-rating n] [-type t] [-comment c] <answer-id>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	in := gateway.FeedbackInput{
		AnswerID:     fs.Arg(0),
		FeedbackType: *kind,
		Comment:      *comment,
	}
	if *rating != 0 {
		in.Rating = rating
	}

	id, err := client.SubmitFeedback(ctx, tok, in)
	if err != nil {
		return err
	}

	fmt.Printf("feedback recorded, id=%s\n", id)
	return nil
}

func cmdFeedbackStats(ctx context.Context, client *gateway.Client, mgr *session.Manager) error {
	tok, err := token(mgr)
	if err != nil {
		return err
	}

	stats, recent, err := client.FeedbackStats(ctx, tok)
	if err != nil {
		return err
	}

	fmt.Printf("total=%d helpful=%d not_helpful=%d", stats.TotalFeedback, stats.HelpfulCount, stats.NotHelpfulCount)
	if stats.AverageRating != nil {
		fmt.Printf(" avg_rating=%.1f", *stats.AverageRating)
	}
	fmt.Println()

	for _, f := range recent {
		fmt.Printf("%-38s type=%-12s %s\n", f.FeedbackID, f.FeedbackType, f.Comment)
	}
	return nil
}

func cmdProfile(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	fs := flag.NewFlagSet("profile", flag.ExitOnError)
	username := fs.String("u", "", "new username")
	email := fs.String("e", "", "new email")
	_ = fs.Parse(args)

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	if *username == "" && *email == "" {
		p, err := client.Profile(ctx, tok)
		if err != nil {
			return err
		}

		fmt.Printf("%s <%s>, member since %s\n", p.Username, p.Email, p.CreatedAt)
		return nil
	}

	p, err := client.UpdateProfile(ctx, tok, gateway.ProfileUpdate{
		Username: *username,
		Email:    *email,
	})
	if err != nil {
		return err
	}

	fmt.Printf("profile updated: %s <%s>\n", p.Username, p.Email)
	return nil
}

func cmdPasswd(ctx context.Context, args []string, client *gateway.Client, mgr *session.Manager) error {
	fs := flag.NewFlagSet("passwd", flag.ExitOnError)
	current := fs.String("current", "", "current password")
	next := fs.String("new", "", "new password")
	_ = fs.Parse(args)

	if *current == "" || *next == "" {
		return errors.New("usage: smartdoc passwd -current <password> -new <password>")
	}

	tok, err := token(mgr)
	if err != nil {
		return err
	}

	if err := client.ChangePassword(ctx, tok, *current, *next); err != nil {
		return err
	}

	fmt.Println("password changed")
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: smartdoc [--config path] <command> [arguments]

commands:
  login, signup, logout, whoami
  docs, upload, rm, preview, download
  ask
  share, shares, shared, unshare
  feedback, feedback-stats
  profile, passwd`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "smartdoc: "+format+"\n", args...)
	os.Exit(1)
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelWarn
	if env == "dev" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
