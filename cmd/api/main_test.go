package main

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"
)

// freeAddr 申请一个空闲的本地监听地址
func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("申请监听地址失败: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

// TestServeHTTP_ShutdownOnContextCancel 测试ctx取消后HTTP服务优雅退出
func TestServeHTTP_ShutdownOnContextCancel(t *testing.T) {
	srv := &http.Server{
		Addr:    freeAddr(t),
		Handler: http.NewServeMux(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serveHTTP(ctx, srv)
	}()

	// 等待服务开始监听
	deadline := time.Now().Add(2 * time.Second)
	for {
		conn, err := net.Dial("tcp", srv.Addr)
		if err == nil {
			conn.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("服务未开始监听: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// 模拟收到SIGINT/SIGTERM：取消ctx后服务必须退出
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("优雅关停应返回nil: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("ctx取消后HTTP服务未退出")
	}
}

// TestServeHTTP_ListenError 测试启动期错误直接返回
func TestServeHTTP_ListenError(t *testing.T) {
	// 先占住端口，令ListenAndServe失败
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("申请监听地址失败: %v", err)
	}
	defer ln.Close()

	srv := &http.Server{Addr: ln.Addr().String(), Handler: http.NewServeMux()}

	done := make(chan error, 1)
	go func() {
		done <- serveHTTP(context.Background(), srv)
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Error("端口被占用时应返回错误")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("启动失败时serveHTTP未返回")
	}
}
