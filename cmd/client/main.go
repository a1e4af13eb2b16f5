// cmd/client/main.go

// 互動式客戶端：連線到 bank server、印出問候行，
// 之後把標準輸入的每一行送出並印出一行回覆；送出 q 後不等待回覆直接結束。

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"threadbank/internal/config"
)

func main() {
	if err := run(os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "bank client:", err)
		os.Exit(1)
	}
}

func run(in io.Reader, out io.Writer) error {
	configPath := flag.String("config", os.Getenv("BANK_CONFIG"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Connecting to the bank, please wait.")
	conn, err := net.Dial(cfg.Network, cfg.Address)
	if err != nil {
		return err
	}
	defer conn.Close()

	return session(conn, in, out)
}

// session 執行一次互動對話。
func session(conn net.Conn, in io.Reader, out io.Writer) error {
	replies := bufio.NewReader(conn)
	greeting, err := replies.ReadString('\n')
	if err != nil {
		return fmt.Errorf("receive greeting: %w", err)
	}
	fmt.Fprint(out, greeting)

	lines := bufio.NewScanner(in)
	for lines.Scan() {
		line := lines.Text()
		if _, err := io.WriteString(conn, line+"\n"); err != nil {
			return err
		}
		if strings.HasPrefix(line, "q") {
			return nil
		}

		reply, err := replies.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out, "Server disconnected")
				return nil
			}
			return err
		}
		fmt.Fprint(out, reply)
	}
	return lines.Err()
}
