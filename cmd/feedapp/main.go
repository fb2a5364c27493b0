package main

import (
	"context"
	"database/sql"
	"io/ioutil"
	"log"
	"net/http"
	"os"
	"time"

	"socialfeed/pkg/comments"
	"socialfeed/pkg/handlers"
	"socialfeed/pkg/media"
	"socialfeed/pkg/middleware"
	"socialfeed/pkg/notifications"
	"socialfeed/pkg/posts"
	"socialfeed/pkg/session"
	"socialfeed/pkg/user"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	createSchema = `CREATE TABLE IF NOT EXISTS users (
		id int(11) unsigned NOT NULL AUTO_INCREMENT,
		username VARCHAR(50) NOT NULL,
		email VARCHAR(100) NOT NULL,
		password VARCHAR(100) NOT NULL,
		avatar VARCHAR(255) NOT NULL DEFAULT '',
		bio TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY username (username),
		UNIQUE KEY email (email)
	) ENGINE=INNODB DEFAULT CHARSET=utf8;`
)

func main() {
	app := &Application{
		MongoConnectionString: envOr("MONGO_URL", "mongodb://localhost:27017/socialfeed?readPreference=primary&appname=socialfeed&ssl=false"),
		MongoDBName:           envOr("MONGO_DB", "socialfeed"),
		MySQLConnectionString: envOr("MYSQL_DSN", "root:qwer1234@tcp(localhost:3306)/socialfeed?parseTime=true"),
		RedisOptions: &redis.Options{
			Addr:     envOr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		ServerAddr:         envOr("SERVER_ADDR", "127.0.0.1:8000"),
		UploadDir:          envOr("UPLOAD_DIR", "uploads"),
		PrivateKeyLocation: envOr("JWT_PRIVATE_KEY", "key.rsa"),
		PublicKeyLocation:  envOr("JWT_PUBLIC_KEY", "key.rsa.pub"),
	}

	app.Run()
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

type Application struct {
	MongoConnectionString string
	MongoDBName           string
	MySQLConnectionString string
	RedisOptions          *redis.Options

	ServerAddr         string
	UploadDir          string
	PublicKeyLocation  string
	PrivateKeyLocation string

	HTTPServer *http.Server
}

func (a *Application) Run() {
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync() // flushes buffer, if any
	logger := zapLogger.Sugar()

	rdb := redis.NewClient(a.RedisOptions)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		panic(err.Error())
	}

	privateKeyBytes, err := ioutil.ReadFile(a.PrivateKeyLocation)
	if err != nil {
		panic(err)
	}

	publicKeyBytes, err := ioutil.ReadFile(a.PublicKeyLocation)
	if err != nil {
		panic(err)
	}

	smJWT, err := session.NewSessionManagerJWT(privateKeyBytes, publicKeyBytes)
	if err != nil {
		panic(err)
	}

	sm := session.NewSessionManagerRedis(rdb, smJWT)

	db, err := sql.Open("mysql", a.MySQLConnectionString)
	if err != nil {
		panic(err.Error())
	}

	defer db.Close()
	err = db.Ping()
	if err != nil {
		panic(err)
	}

	_, err = db.Exec(createSchema)
	if err != nil {
		panic(err)
	}

	userRepo := user.NewUserRepoSQL(db)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := posts.NewMongoClient(ctx, a.MongoConnectionString)
	if err != nil {
		panic(err)
	}
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		panic(err)
	}

	mongoDB := client.Database(a.MongoDBName)
	postsRepo := posts.NewPostsRepoMongo(mongoDB)
	commentsRepo := comments.NewCommentsRepoMongo(mongoDB)
	notificationsRepo := notifications.NewNotificationsRepoMongo(mongoDB)
	notifier := notifications.NewNotifier(notificationsRepo)

	mediaStore, err := media.NewDiskStore(a.UploadDir, "/uploads/")
	if err != nil {
		panic(err)
	}

	userHandler := &handlers.UserHandler{
		Sm:     sm,
		Repo:   userRepo,
		Logger: logger,
	}

	postsHandler := &handlers.PostHandler{
		PostsRepo:         postsRepo,
		CommentsRepo:      commentsRepo,
		NotificationsRepo: notificationsRepo,
		UsersRepo:         userRepo,
		Media:             mediaStore,
		Logger:            logger,
	}

	commentsHandler := &handlers.CommentHandler{
		PostsRepo:    postsRepo,
		CommentsRepo: commentsRepo,
		UsersRepo:    userRepo,
		Notifier:     notifier,
		Sm:           sm,
		Logger:       logger,
	}

	notificationsHandler := &handlers.NotificationHandler{
		NotificationsRepo: notificationsRepo,
		PostsRepo:         postsRepo,
		UsersRepo:         userRepo,
		Logger:            logger,
	}

	profileHandler := &handlers.ProfileHandler{
		UsersRepo: userRepo,
		PostsRepo: postsRepo,
		Sm:        sm,
		Logger:    logger,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api/").Subrouter()

	api.HandleFunc("/register", userHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)

	api.HandleFunc("/posts", postsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/detail", postsHandler.Detail).Methods(http.MethodGet)
	api.HandleFunc("/other-posts/{user_id}", postsHandler.ListOther).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", postsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", postsHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/upvote", postsHandler.Upvote).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/unvote", postsHandler.Unvote).Methods(http.MethodPost)

	api.HandleFunc("/post/{post_id}/comments", commentsHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/post/{post_id}/comments", commentsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/post/{post_id}/comments/count", commentsHandler.Count).Methods(http.MethodGet)
	api.HandleFunc("/comments/{id}", commentsHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/notifications/mark-as-read", notificationsHandler.MarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/clear-all", notificationsHandler.ClearAll).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{user_id}/unread-count", notificationsHandler.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{user_id}", notificationsHandler.List).Methods(http.MethodGet)

	api.HandleFunc("/profile/{id}", profileHandler.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile/{id}/posts", profileHandler.GetProfilePosts).Methods(http.MethodGet)
	api.HandleFunc("/profile/{id}/password", profileHandler.ChangePassword).Methods(http.MethodPut)
	api.HandleFunc("/user/{username}", profileHandler.GetUserID).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, "not found", http.StatusNotFound)
	})

	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(a.UploadDir))))

	handler := middleware.Log(logger, r)
	handler = middleware.Recover(logger, handler)

	srv := &http.Server{
		Handler:      handler,
		Addr:         a.ServerAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	a.HTTPServer = srv

	logger.Infof("Started server at %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
