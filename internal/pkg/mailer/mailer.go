package mailer

import (
	"time"

	"gas_marketplace/internal/pkg/config"
	"gas_marketplace/pkg/logger"
	"gas_marketplace/pkg/metrics"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Message 一封待发邮件
type Message struct {
	To      string
	Subject string
	HTML    string
	retry   int
}

// Mailer 邮件发送接口。投递是 best-effort：失败只记日志，不向调用方传播
type Mailer interface {
	Enqueue(to, subject, html string)
	Close()
}

type smtpMailer struct {
	dialer   *gomail.Dialer
	from     string
	queue    chan Message
	retries  chan Message
	maxRetry int
	done     chan struct{}
}

// NewSMTPMailer 创建队列化的 SMTP 发送器
func NewSMTPMailer(workerNum, bufferSize int) Mailer {
	cfg := config.GlobalConfig.Mail
	m := &smtpMailer{
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		queue:    make(chan Message, bufferSize),
		retries:  make(chan Message, bufferSize/2),
		maxRetry: 3,
		done:     make(chan struct{}),
	}

	for i := 0; i < workerNum; i++ {
		go m.worker(i)
	}
	go m.retryWorker()

	logger.Log.Info("mail queue started", zap.Int("workers", workerNum))
	return m
}

// Enqueue 邮件入队。队列满时丢弃并记日志，不阻塞业务请求
func (m *smtpMailer) Enqueue(to, subject, html string) {
	msg := Message{To: to, Subject: subject, HTML: html}
	select {
	case m.queue <- msg:
		metrics.Default.MailQueueDepth.Set(float64(len(m.queue)))
	default:
		logger.Log.Warn("mail queue full, message dropped",
			zap.String("to", to), zap.String("subject", subject))
	}
}

func (m *smtpMailer) worker(id int) {
	for {
		select {
		case msg := <-m.queue:
			metrics.Default.MailQueueDepth.Set(float64(len(m.queue)))
			if err := m.send(msg); err != nil {
				logger.Log.Error("mail delivery failed",
					zap.Int("worker", id),
					zap.String("to", msg.To),
					zap.Int("attempt", msg.retry+1),
					zap.Error(err))

				if msg.retry < m.maxRetry {
					msg.retry++
					select {
					case m.retries <- msg:
					default:
						logger.Log.Warn("mail retry queue full, message dropped",
							zap.String("to", msg.To))
					}
				}
			}
		case <-m.done:
			return
		}
	}
}

func (m *smtpMailer) retryWorker() {
	for {
		select {
		case msg := <-m.retries:
			// 延迟重试，避免立即打到同一个故障的 SMTP 服务
			time.Sleep(time.Duration(msg.retry) * time.Second)
			select {
			case m.queue <- msg:
			default:
				logger.Log.Warn("mail queue full on retry, message dropped",
					zap.String("to", msg.To))
			}
		case <-m.done:
			return
		}
	}
}

func (m *smtpMailer) send(msg Message) error {
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/html", msg.HTML)
	return m.dialer.DialAndSend(mail)
}

func (m *smtpMailer) Close() {
	close(m.done)
}
